package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-console/internal/api/dto"
	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/service"
	apperrors "github.com/spec-kit/staff-console/pkg/util/errorutil"
)

// StaffHandler exposes staff records, attendance and appraisals.
type StaffHandler struct {
	staff      *service.StaffService
	appraisals *service.AppraisalService
	now        func() time.Time
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService, appraisalService *service.AppraisalService) *StaffHandler {
	return &StaffHandler{staff: staffService, appraisals: appraisalService, now: time.Now}
}

// List handles GET /console/staff.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	staff, err := h.staff.List(c.UserContext(), c.Query("department_id"))
	if err != nil {
		return err
	}
	return respond(c, staff)
}

// Get handles GET /console/staff/:id.
func (h *StaffHandler) Get(c *fiber.Ctx) error {
	detail, err := h.staff.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, detail)
}

// Create handles POST /console/staff.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	sub, err := h.submission(c, true)
	if err != nil {
		return err
	}
	result, err := h.staff.Create(c.UserContext(), actor(c), sub)
	if err != nil {
		return err
	}
	return created(c, result)
}

// Update handles PUT /console/staff/:id.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	sub, err := h.submission(c, false)
	if err != nil {
		return err
	}
	result, err := h.staff.Update(c.UserContext(), actor(c), c.Params("id"), sub)
	if err != nil {
		return err
	}
	return respond(c, result)
}

// Delete handles DELETE /console/staff/:id.
func (h *StaffHandler) Delete(c *fiber.Ctx) error {
	return h.staff.Delete(c.UserContext(), c.Params("id"))
}

// Attendance handles GET /console/staff/:id/attendance.
func (h *StaffHandler) Attendance(c *fiber.Ctx) error {
	records, err := h.staff.Attendance(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, records)
}

// AttendanceLog handles GET /console/attendance.
func (h *StaffHandler) AttendanceLog(c *fiber.Ctx) error {
	records, err := h.staff.AttendanceLog(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, records)
}

// Appraisals handles GET /console/staff/:id/appraisals.
func (h *StaffHandler) Appraisals(c *fiber.Ctx) error {
	period, err := h.period(c)
	if err != nil {
		return err
	}
	report, err := h.appraisals.Monthly(c.UserContext(), period)
	if err != nil {
		return err
	}
	return respond(c, report)
}

// ExportAppraisals handles GET /console/staff/:id/appraisals/export.
func (h *StaffHandler) ExportAppraisals(c *fiber.Ctx) error {
	period, err := h.period(c)
	if err != nil {
		return err
	}
	name, data, err := h.appraisals.Export(c.UserContext(), period)
	if err != nil {
		return err
	}
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, service.XLSXContentType)
	return c.Send(data)
}

func (h *StaffHandler) period(c *fiber.Ctx) (domain.AppraisalPeriod, error) {
	var q dto.AppraisalQuery
	if err := c.QueryParser(&q); err != nil {
		return domain.AppraisalPeriod{}, apperrors.NewValidationError("month and year must be numbers", nil)
	}
	if err := dto.Validate(q); err != nil {
		return domain.AppraisalPeriod{}, err
	}
	return q.Period(c.Params("id"), h.now()), nil
}

func (h *StaffHandler) submission(c *fiber.Ctx, create bool) (service.StaffSubmission, error) {
	var form dto.StaffForm
	if isMultipart(c) {
		form = dto.StaffFormFrom(func(key string) string { return c.FormValue(key) })
	} else {
		body := map[string]any{}
		if err := c.BodyParser(&body); err != nil {
			return service.StaffSubmission{}, apperrors.NewValidationError("invalid payload", nil)
		}
		form = dto.StaffFormFromJSON(body)
	}
	if err := form.Validate(create); err != nil {
		return service.StaffSubmission{}, err
	}

	photo, err := pickedFile(c, domain.StaffProfilePicField)
	if err != nil {
		return service.StaffSubmission{}, err
	}
	return service.StaffSubmission{Values: form.Values(), Photo: photo}, nil
}
