package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Domenick1991/oceanview/internal/auth"
	"github.com/Domenick1991/oceanview/internal/repository"
	"github.com/Domenick1991/oceanview/internal/service/feedback"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedbackRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue(testUserID, "staff")
	require.NoError(t, err)

	router := gin.New()
	NewFeedbackHandler(feedback.NewFeedbackService(repository.NewMemoryStore())).
		Register(router.Group("/api"), auth.Required(issuer), auth.Optional(issuer))
	return router, token
}

func enquiryBody() gin.H {
	return gin.H{"name": "Ann", "email": "ann@example.com", "message": "Do you allow pets?"}
}

func TestFeedbackHandler_Testimonials(t *testing.T) {
	router, token := newFeedbackRouter(t)

	w := doJSON(router, "POST", "/api/testimonials", "", gin.H{"name": "Ann", "comment": "Lovely", "rating": 5})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "POST", "/api/testimonials", token, gin.H{"name": "Ann", "comment": "Lovely", "rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "POST", "/api/testimonials", token, gin.H{"name": "Ann", "comment": "Lovely", "rating": 5, "cruise_id": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, float64(testUserID), created["user_id"])
	assert.Equal(t, false, created["is_verified"])

	w = doJSON(router, "PATCH", fmt.Sprintf("/api/testimonials/%v/verify", created["id"]), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_verified"])

	w = doJSON(router, "GET", "/api/testimonials/cruise/2", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lovely")
}

func TestFeedbackHandler_Contact(t *testing.T) {
	router, token := newFeedbackRouter(t)

	w := doJSON(router, "POST", "/api/contact", "", enquiryBody())
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["enquiry_id"])

	w = doJSON(router, "POST", "/api/contact", "", gin.H{"name": "Ann", "email": "not-an-email", "message": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// anonymous enquiries are not attributed to anyone
	w = doJSON(router, "GET", "/api/enquiries/user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestFeedbackHandler_EnquiryLifecycle(t *testing.T) {
	router, token := newFeedbackRouter(t)

	w := doJSON(router, "POST", "/api/enquiries", token, enquiryBody())
	require.Equal(t, http.StatusCreated, w.Code)
	enquiry := decode(t, w)
	assert.Equal(t, "submitted", enquiry["status"])
	assert.Equal(t, "General enquiry", enquiry["subject"])
	path := fmt.Sprintf("/api/enquiries/%v", enquiry["id"])

	w = doJSON(router, "GET", "/api/enquiries/user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Do you allow pets?")

	w = doJSON(router, "PATCH", path+"/assign", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assigned := decode(t, w)
	assert.Equal(t, "in_review", assigned["status"])
	assert.Equal(t, float64(testUserID), assigned["assigned_to_user_id"])

	w = doJSON(router, "POST", path+"/responses", token, gin.H{"response_text": "Small dogs only."})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "GET", path, token, nil)
	assert.Equal(t, "responded", decode(t, w)["status"])

	w = doJSON(router, "PATCH", path+"/status", token, gin.H{"status": "closed"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "POST", path+"/responses", token, gin.H{"response_text": "One more thing"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, "PATCH", path+"/status", token, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "GET", path+"/responses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Small dogs only.")

	w = doJSON(router, "GET", "/api/enquiries/999/responses", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
