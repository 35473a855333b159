package http

import (
	"fmt"
	"strconv"

	"resume-builder/internal/model"
	"resume-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	svc *usecase.Service
}

func NewHandler(svc *usecase.Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches the API routes. gatherer backs /metrics; nil skips it.
func (h *Handler) Register(app *fiber.App, gatherer prometheus.Gatherer) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	u := h.requireUser
	app.Get("/resumes/:userId", u, h.Get)
	app.Put("/resumes/:userId/sections/:section", u, h.ReplaceSection)
	app.Post("/resumes/:userId/sections/:section/entries", u, h.AddEntry)
	app.Patch("/resumes/:userId/sections/:section/entries/:index", u, h.UpdateEntry)
	app.Delete("/resumes/:userId/sections/:section/entries/:index", u, h.RemoveEntry)
	app.Post("/resumes/:userId/sections/:section/entries/:index/items", u, h.AddItem)
	app.Delete("/resumes/:userId/sections/:section/entries/:index/items/:item", u, h.RemoveItem)
	app.Put("/resumes/:userId/template", u, h.SetTemplate)
	app.Post("/resumes/:userId/reset", u, h.Reset)
	app.Post("/resumes/:userId/save", u, h.Save)
	app.Get("/resumes/:userId/render", u, h.Render)
	app.Post("/resumes/:userId/export", u, h.Export)
	app.Get("/resumes/:userId/exports", u, h.ExportHistory)
	app.Post("/resumes/:userId/assist/summary", u, h.AssistSummary)
	app.Post("/resumes/:userId/assist/achievements/:entryId", u, h.AssistAchievements)
}

func (h *Handler) requireUser(c *fiber.Ctx) error {
	if err := validate.Var(c.Params("userId"), "required,userid"); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_USER_ID", "invalid user id", "userId")
	}
	return c.Next()
}

func section(c *fiber.Ctx) (model.Section, error) {
	return model.ParseSection(c.Params("section"))
}

func index(c *fiber.Ctx, param string) (int, error) {
	i, err := strconv.Atoi(c.Params(param))
	if err != nil {
		return 0, &model.ValidationError{Field: param, Message: fmt.Sprintf("invalid %s %q", param, c.Params(param)), Err: model.ErrIndexOutOfRange}
	}
	return i, nil
}

// bind parses and validates a JSON body.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{status: fiber.StatusBadRequest, code: "INVALID_BODY", message: "invalid JSON body"}
	}
	if err := validate.Struct(out); err != nil {
		field, msg := validationMessage(err)
		return &requestError{status: fiber.StatusUnprocessableEntity, code: "VALIDATION_FAILED", message: msg, field: field}
	}
	return nil
}

func (h *Handler) Get(c *fiber.Ctx) error {
	return c.JSON(h.svc.Get(c.UserContext(), c.Params("userId")))
}

func (h *Handler) ReplaceSection(c *fiber.Ctx) error {
	name, err := section(c)
	if err != nil {
		return respond(c, err)
	}
	v, err := h.svc.ReplaceSection(c.UserContext(), c.Params("userId"), name, c.Body())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"section": name, "value": v})
}

func (h *Handler) AddEntry(c *fiber.Ctx) error {
	name, err := section(c)
	if err != nil {
		return respond(c, err)
	}
	var req textRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return respond(c, err)
		}
	}
	v, err := h.svc.AddEntry(c.UserContext(), c.Params("userId"), name, req.Text)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"section": name, "value": v})
}

func (h *Handler) UpdateEntry(c *fiber.Ctx) error {
	name, err := section(c)
	if err != nil {
		return respond(c, err)
	}
	i, err := index(c, "index")
	if err != nil {
		return respond(c, err)
	}
	var req entryChangeRequest
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	if len(req.Fields) == 0 && req.Current == nil {
		return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "nothing to change", "fields")
	}
	v, err := h.svc.UpdateEntry(c.UserContext(), c.Params("userId"), name, i, usecase.EntryChange{Fields: req.Fields, Current: req.Current})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"section": name, "value": v})
}

func (h *Handler) RemoveEntry(c *fiber.Ctx) error {
	name, err := section(c)
	if err != nil {
		return respond(c, err)
	}
	i, err := index(c, "index")
	if err != nil {
		return respond(c, err)
	}
	v, err := h.svc.RemoveEntry(c.UserContext(), c.Params("userId"), name, i)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"section": name, "value": v})
}

func (h *Handler) AddItem(c *fiber.Ctx) error {
	name, err := section(c)
	if err != nil {
		return respond(c, err)
	}
	i, err := index(c, "index")
	if err != nil {
		return respond(c, err)
	}
	var req textRequest
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	v, err := h.svc.AddItem(c.UserContext(), c.Params("userId"), name, i, req.Text)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"section": name, "value": v})
}

func (h *Handler) RemoveItem(c *fiber.Ctx) error {
	name, err := section(c)
	if err != nil {
		return respond(c, err)
	}
	i, err := index(c, "index")
	if err != nil {
		return respond(c, err)
	}
	j, err := index(c, "item")
	if err != nil {
		return respond(c, err)
	}
	v, err := h.svc.RemoveItem(c.UserContext(), c.Params("userId"), name, i, j)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"section": name, "value": v})
}

func (h *Handler) SetTemplate(c *fiber.Ctx) error {
	var req templateRequest
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	t, err := h.svc.SetTemplate(c.UserContext(), c.Params("userId"), req.Template)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"template": t})
}

func (h *Handler) Reset(c *fiber.Ctx) error {
	v, err := h.svc.Reset(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) Save(c *fiber.Ctx) error {
	if err := h.svc.Save(c.UserContext(), c.Params("userId")); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) Render(c *fiber.Ctx) error {
	s, err := h.svc.Render(c.UserContext(), c.Params("userId"), c.Query("template"))
	if err != nil {
		return respond(c, err)
	}
	c.Set("X-Resume-Template", string(s.Variant))
	return c.Type("html").SendString(s.HTML)
}

func (h *Handler) Export(c *fiber.Ctx) error {
	res, err := h.svc.Export(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respond(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.FileName))
	c.Set("X-Export-Pages", strconv.Itoa(res.Pages))
	if res.Location != "" {
		c.Set("X-Export-Location", res.Location)
	}
	return c.Send(res.PDF)
}

func (h *Handler) ExportHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 100", "limit")
	}
	jobs, err := h.svc.ExportHistory(c.UserContext(), c.Params("userId"), limit)
	if err != nil {
		return respond(c, err)
	}
	if jobs == nil {
		return c.JSON([]any{})
	}
	return c.JSON(jobs)
}

func (h *Handler) AssistSummary(c *fiber.Ctx) error {
	out, err := h.svc.AssistSummary(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(out)
}

func (h *Handler) AssistAchievements(c *fiber.Ctx) error {
	out, err := h.svc.AssistAchievements(c.UserContext(), c.Params("userId"), c.Params("entryId"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(out)
}
