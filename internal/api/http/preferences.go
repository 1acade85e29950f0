package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/tempus/internal/settings"
	"github.com/i474232898/tempus/internal/store"
	"github.com/i474232898/tempus/internal/weather"
)

// PreferenceStore is what the preference handlers need from storage.
type PreferenceStore interface {
	Create() settings.Preferences
	Get(id string) (settings.Preferences, error)
	Update(id string, u settings.Update) (settings.Preferences, error)
	RecordSearch(id string, loc weather.Location) (settings.Preferences, error)
	ClearHistory(id string) (settings.Preferences, error)
}

// RegisterPreferenceRoutes wires the settings drawer endpoints.
func RegisterPreferenceRoutes(app *fiber.App, prefs PreferenceStore) {
	g := app.Group("/api/v1/preferences")

	g.Post("", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusCreated).JSON(prefs.Create())
	})

	g.Get("/:id", func(c *fiber.Ctx) error {
		id, err := profileID(c)
		if err != nil {
			return err
		}
		p, err := prefs.Get(id)
		if err != nil {
			return preferenceError(err)
		}
		return c.JSON(p)
	})

	g.Put("/:id", func(c *fiber.Ctx) error {
		id, err := profileID(c)
		if err != nil {
			return err
		}

		var body settings.Update
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.LastCity != nil {
			if err := validate.Struct(searchBody{City: body.LastCity.City, Country: body.LastCity.Country}); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		p, err := prefs.Update(id, body)
		if err != nil {
			return preferenceError(err)
		}
		return c.JSON(p)
	})

	g.Post("/:id/searches", func(c *fiber.Ctx) error {
		id, err := profileID(c)
		if err != nil {
			return err
		}

		var body searchBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		p, err := prefs.RecordSearch(id, weather.Location{City: body.City, Country: body.Country})
		if err != nil {
			return preferenceError(err)
		}
		return c.JSON(p)
	})

	g.Delete("/:id/searches", func(c *fiber.Ctx) error {
		id, err := profileID(c)
		if err != nil {
			return err
		}
		p, err := prefs.ClearHistory(id)
		if err != nil {
			return preferenceError(err)
		}
		return c.JSON(p)
	})
}

type searchBody struct {
	City    string `json:"city" validate:"required,max=100"`
	Country string `json:"country" validate:"omitempty,max=64"`
}

func profileID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "profile id must be a UUID")
	}
	return id, nil
}

func preferenceError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "no preferences for requested profile")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to access preferences")
}
