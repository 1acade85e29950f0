package httpapi

import (
	"errors"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/tempus/internal/store"
	"github.com/i474232898/tempus/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the weather handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, defaultUnits weather.Units) {
	v1 := app.Group("/api/v1")
	w := v1.Group("/weather")

	w.Get("/view", func(c *fiber.Ctx) error {
		q, err := parseViewQuery(c, defaultUnits)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := service.GetView(c.UserContext(), q.location(), q.units(), q.Refresh)
		if err != nil {
			return providerError(err)
		}
		return c.JSON(view.InZone(q.zone()))
	})

	w.Get("/daily", func(c *fiber.Ctx) error {
		q, err := parseViewQuery(c, defaultUnits)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := service.GetView(c.UserContext(), q.location(), q.units(), q.Refresh)
		if err != nil {
			return providerError(err)
		}
		return c.JSON(fiber.Map{
			"location": view.Location,
			"units":    view.Units,
			"days":     view.InZone(q.zone()).Daily,
		})
	})

	w.Get("/hourly", func(c *fiber.Ctx) error {
		var q hourlyQuery
		if err := q.bind(c, defaultUnits); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		hours, err := service.Hourly(c.UserContext(), q.location(), q.units(), q.Day)
		if err != nil {
			return providerError(err)
		}
		return c.JSON(fiber.Map{
			"location": q.location(),
			"units":    q.units(),
			"windUnit": q.units().WindUnit(),
			"day":      q.Day,
			"hours":    hours,
		})
	})

	w.Get("/advice", func(c *fiber.Ctx) error {
		q, err := parseViewQuery(c, defaultUnits)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		state, err := service.CurrentAdvice(c.UserContext(), q.location(), q.units())
		if err != nil {
			return providerError(err)
		}
		return c.JSON(adviceResponse{
			Category: state.Advice.Category,
			Text:     state.Text,
			Index:    state.Index,
			Variants: state.Advice.Variants,
		})
	})

	w.Post("/advice/next", func(c *fiber.Ctx) error {
		q, err := parseViewQuery(c, defaultUnits)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		text, idx, err := service.NextAdvice(q.location(), q.units())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather view for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to rotate advice")
		}
		return c.JSON(fiber.Map{"text": text, "index": idx})
	})
}

type adviceResponse struct {
	Category weather.AdviceCategory `json:"category"`
	Text     string                 `json:"text"`
	Index    int                    `json:"index"`
	Variants []string               `json:"variants"`
}

// providerError maps service failures to HTTP errors.
func providerError(err error) error {
	switch {
	case errors.Is(err, weather.ErrLocationNotFound), errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
	default:
		return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
	}
}

// viewQuery holds query parameters for identifying a view.
type viewQuery struct {
	City    string `validate:"required,max=100"`
	Country string `validate:"omitempty,max=64"`
	Units   string `validate:"oneof=metric imperial"`
	TZ      string `validate:"omitempty,timezone"`
	Refresh bool
}

func (q viewQuery) location() weather.Location {
	return weather.Location{
		City:    q.City,
		Country: q.Country,
	}
}

func (q viewQuery) units() weather.Units {
	return weather.Units(q.Units)
}

// zone is the viewer's IANA time zone, nil when none was given.
func (q viewQuery) zone() *time.Location {
	if q.TZ == "" {
		return nil
	}
	zone, err := time.LoadLocation(q.TZ)
	if err != nil {
		return nil
	}
	return zone
}

func parseViewQuery(c *fiber.Ctx, defaultUnits weather.Units) (viewQuery, error) {
	var q viewQuery

	q.City = c.Query("city")
	q.Country = c.Query("country")
	q.Units = c.Query("units", string(defaultUnits))
	q.TZ = c.Query("tz")

	if s := c.Query("refresh"); s != "" {
		refresh, err := strconv.ParseBool(s)
		if err != nil {
			return q, errors.New("refresh must be a boolean")
		}
		q.Refresh = refresh
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// hourlyQuery holds query parameters for the hourly endpoint.
type hourlyQuery struct {
	viewQuery
	Day string `validate:"omitempty,datetime=2006-01-02"`
}

func (h *hourlyQuery) bind(c *fiber.Ctx, defaultUnits weather.Units) error {
	q, err := parseViewQuery(c, defaultUnits)
	if err != nil {
		return err
	}
	h.viewQuery = q
	h.Day = c.Query("day")

	return validate.Struct(h)
}
