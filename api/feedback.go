package api

import (
	"net/http"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/service/feedback"
	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	service feedback.FeedbackUseCase
}

type enquiryStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type assignRequest struct {
	StaffID int64 `json:"staff_id"`
}

func NewFeedbackHandler(service feedback.FeedbackUseCase) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

func (h *FeedbackHandler) Register(router *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	router.GET("/testimonials", h.listTestimonials)
	router.GET("/testimonials/cruise/:id", h.listTestimonialsByCruise)
	router.POST("/testimonials", requireAuth, h.createTestimonial)
	router.PATCH("/testimonials/:id/verify", requireAuth, h.verifyTestimonial)

	router.POST("/enquiries", optionalAuth, h.createEnquiry)
	router.POST("/contact", optionalAuth, h.contact)

	enquiries := router.Group("/enquiries", requireAuth)
	enquiries.GET("", h.listEnquiries)
	enquiries.GET("/user", h.listMyEnquiries)
	enquiries.GET("/:id", h.getEnquiry)
	enquiries.PATCH("/:id/status", h.updateEnquiryStatus)
	enquiries.PATCH("/:id/assign", h.assignEnquiry)
	enquiries.GET("/:id/responses", h.listResponses)
	enquiries.POST("/:id/responses", h.createResponse)
}

func (h *FeedbackHandler) listTestimonials(c *gin.Context) {
	testimonials, err := h.service.ListTestimonials(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, testimonials)
}

func (h *FeedbackHandler) listTestimonialsByCruise(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	testimonials, err := h.service.ListTestimonialsByCruise(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, testimonials)
}

func (h *FeedbackHandler) createTestimonial(c *gin.Context) {
	var input feedback.TestimonialInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	input.UserID = optionalUser(c)

	created, err := h.service.CreateTestimonial(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *FeedbackHandler) verifyTestimonial(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	verified, err := h.service.VerifyTestimonial(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, verified)
}

func (h *FeedbackHandler) createEnquiry(c *gin.Context) {
	var input feedback.EnquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	input.UserID = optionalUser(c)

	created, err := h.service.CreateEnquiry(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *FeedbackHandler) contact(c *gin.Context) {
	var input feedback.EnquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	input.UserID = optionalUser(c)

	id, err := h.service.SubmitContact(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "enquiry_id": id})
}

func (h *FeedbackHandler) listEnquiries(c *gin.Context) {
	enquiries, err := h.service.ListEnquiries(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, enquiries)
}

func (h *FeedbackHandler) listMyEnquiries(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	enquiries, err := h.service.ListEnquiriesByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, enquiries)
}

func (h *FeedbackHandler) getEnquiry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	enquiry, err := h.service.GetEnquiry(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, enquiry)
}

func (h *FeedbackHandler) updateEnquiryStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req enquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status, err := domain.ParseEnquiryStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	updated, err := h.service.UpdateEnquiryStatus(c.Request.Context(), id, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// assignEnquiry assigns to staff_id, or to the caller when it is omitted.
func (h *FeedbackHandler) assignEnquiry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	if req.StaffID == 0 {
		if req.StaffID, ok = currentUser(c); !ok {
			return
		}
	}

	updated, err := h.service.AssignEnquiry(c.Request.Context(), id, req.StaffID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *FeedbackHandler) listResponses(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	responses, err := h.service.ListEnquiryResponses(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}

func (h *FeedbackHandler) createResponse(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input feedback.ResponseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	input.RespondedByUserID = optionalUser(c)

	created, err := h.service.CreateEnquiryResponse(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
