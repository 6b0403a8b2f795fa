package repository

import (
	"context"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/jackc/pgx/v5"
)

const testimonialColumns = `id, name, cruise_name, comment, rating, COALESCE(avatar_url, ''), cruise_id, user_id, created_at, is_verified`

func scanTestimonial(row scanner) (*domain.Testimonial, error) {
	var t domain.Testimonial
	if err := row.Scan(&t.ID, &t.Name, &t.CruiseName, &t.Comment, &t.Rating, &t.AvatarURL, &t.CruiseID, &t.UserID, &t.CreatedAt, &t.IsVerified); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PGStore) ListTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	rows, err := s.db.Query(ctx, `SELECT `+testimonialColumns+` FROM testimonials ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTestimonial)
}

func (s *PGStore) ListTestimonialsByCruise(ctx context.Context, cruiseID int64) ([]domain.Testimonial, error) {
	rows, err := s.db.Query(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE cruise_id=$1 ORDER BY id`, cruiseID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTestimonial)
}

func (s *PGStore) GetTestimonial(ctx context.Context, id int64) (*domain.Testimonial, error) {
	t, err := scanTestimonial(s.db.QueryRow(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE id=$1`, id))
	return t, mapErr(err, "testimonial", id)
}

func (s *PGStore) CreateTestimonial(ctx context.Context, t *domain.Testimonial) (*domain.Testimonial, error) {
	row := s.db.QueryRow(ctx, `INSERT INTO testimonials (name, cruise_name, comment, rating, avatar_url, cruise_id, user_id, created_at, is_verified)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9) RETURNING `+testimonialColumns,
		t.Name, t.CruiseName, t.Comment, t.Rating, t.AvatarURL, t.CruiseID, t.UserID, t.CreatedAt, t.IsVerified)
	created, err := scanTestimonial(row)
	return created, mapErr(err, "testimonial", t.Name)
}

func (s *PGStore) UpdateTestimonial(ctx context.Context, id int64, fn func(*domain.Testimonial) error) (*domain.Testimonial, error) {
	var updated *domain.Testimonial
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		t, err := scanTestimonial(tx.QueryRow(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return mapErr(err, "testimonial", id)
		}
		if err := fn(t); err != nil {
			return err
		}
		updated, err = scanTestimonial(tx.QueryRow(ctx, `UPDATE testimonials SET name=$2, cruise_name=$3, comment=$4, rating=$5,
			avatar_url=NULLIF($6, ''), cruise_id=$7, user_id=$8, is_verified=$9 WHERE id=$1 RETURNING `+testimonialColumns,
			id, t.Name, t.CruiseName, t.Comment, t.Rating, t.AvatarURL, t.CruiseID, t.UserID, t.IsVerified))
		return mapErr(err, "testimonial", id)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

const enquiryColumns = `id, name, email, COALESCE(phone, ''), subject, message, status, created_at, updated_at, assigned_to_user_id, user_id`

func scanEnquiry(row scanner) (*domain.Enquiry, error) {
	var e domain.Enquiry
	if err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Subject, &e.Message, &e.Status, &e.CreatedAt, &e.UpdatedAt, &e.AssignedToUserID, &e.UserID); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *PGStore) ListEnquiries(ctx context.Context) ([]domain.Enquiry, error) {
	rows, err := s.db.Query(ctx, `SELECT `+enquiryColumns+` FROM enquiries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEnquiry)
}

func (s *PGStore) ListEnquiriesByUser(ctx context.Context, userID int64) ([]domain.Enquiry, error) {
	rows, err := s.db.Query(ctx, `SELECT `+enquiryColumns+` FROM enquiries WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEnquiry)
}

func (s *PGStore) GetEnquiry(ctx context.Context, id int64) (*domain.Enquiry, error) {
	e, err := scanEnquiry(s.db.QueryRow(ctx, `SELECT `+enquiryColumns+` FROM enquiries WHERE id=$1`, id))
	return e, mapErr(err, "enquiry", id)
}

func (s *PGStore) CreateEnquiry(ctx context.Context, e *domain.Enquiry) (*domain.Enquiry, error) {
	row := s.db.QueryRow(ctx, `INSERT INTO enquiries (name, email, phone, subject, message, status, created_at, updated_at, assigned_to_user_id, user_id)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10) RETURNING `+enquiryColumns,
		e.Name, e.Email, e.Phone, e.Subject, e.Message, e.Status, e.CreatedAt, e.UpdatedAt, e.AssignedToUserID, e.UserID)
	created, err := scanEnquiry(row)
	return created, mapErr(err, "enquiry", e.Subject)
}

func updateEnquiryTx(ctx context.Context, tx pgx.Tx, id int64, fn func(*domain.Enquiry) error) (*domain.Enquiry, error) {
	e, err := scanEnquiry(tx.QueryRow(ctx, `SELECT `+enquiryColumns+` FROM enquiries WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapErr(err, "enquiry", id)
	}
	if err := fn(e); err != nil {
		return nil, err
	}
	updated, err := scanEnquiry(tx.QueryRow(ctx, `UPDATE enquiries SET name=$2, email=$3, phone=NULLIF($4, ''), subject=$5, message=$6,
		status=$7, updated_at=$8, assigned_to_user_id=$9, user_id=$10 WHERE id=$1 RETURNING `+enquiryColumns,
		id, e.Name, e.Email, e.Phone, e.Subject, e.Message, e.Status, e.UpdatedAt, e.AssignedToUserID, e.UserID))
	return updated, mapErr(err, "enquiry", id)
}

func (s *PGStore) UpdateEnquiry(ctx context.Context, id int64, fn func(*domain.Enquiry) error) (*domain.Enquiry, error) {
	var updated *domain.Enquiry
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = updateEnquiryTx(ctx, tx, id, fn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

const responseColumns = `id, enquiry_id, response_text, responded_by_user_id, responded_at`

func scanResponse(row scanner) (*domain.EnquiryResponse, error) {
	var r domain.EnquiryResponse
	if err := row.Scan(&r.ID, &r.EnquiryID, &r.ResponseText, &r.RespondedByUserID, &r.RespondedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PGStore) ListEnquiryResponses(ctx context.Context, enquiryID int64) ([]domain.EnquiryResponse, error) {
	rows, err := s.db.Query(ctx, `SELECT `+responseColumns+` FROM enquiry_responses WHERE enquiry_id=$1 ORDER BY id`, enquiryID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanResponse)
}

func (s *PGStore) CreateEnquiryResponse(ctx context.Context, r *domain.EnquiryResponse, fn func(*domain.Enquiry) error) (*domain.EnquiryResponse, error) {
	var created *domain.EnquiryResponse
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := updateEnquiryTx(ctx, tx, r.EnquiryID, fn); err != nil {
			return err
		}
		var err error
		created, err = scanResponse(tx.QueryRow(ctx, `INSERT INTO enquiry_responses (enquiry_id, response_text, responded_by_user_id, responded_at)
			VALUES ($1, $2, $3, $4) RETURNING `+responseColumns,
			r.EnquiryID, r.ResponseText, r.RespondedByUserID, r.RespondedAt))
		return mapErr(err, "enquiry response", r.EnquiryID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
