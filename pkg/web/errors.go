package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/guidely/automator/pkg/graph"
	"github.com/guidely/automator/pkg/persistence"
	"github.com/guidely/automator/pkg/services"
	"github.com/moogar0880/problems"
)

// validationProblem is an RFC 7807 problem carrying the itemized issue list
// that blocked a publish.
type validationProblem struct {
	*problems.Problem

	Errors []graph.Issue `json:"errors"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusBadRequest).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusNotFound).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

// handleServiceError maps service and persistence errors onto problem
// responses. A blocked publish renders every structural issue so the author
// can fix them one by one.
func handleServiceError(c fiber.Ctx, err error) error {
	if failure, ok := services.IsValidationFailed(err); ok {
		problem := &validationProblem{
			Problem: problems.NewStatusProblem(fiber.StatusUnprocessableEntity).
				WithInstance(c.Path()).
				WithType("definition_invalid").
				WithDetail("the automator definition cannot be published"),
			Errors: failure.Issues,
		}

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)
	}

	switch {
	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(fiber.StatusBadRequest).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case persistence.IsAutomatorNotFound(err):
		problem := problems.NewStatusProblem(fiber.StatusNotFound).
			WithInstance(c.Path()).
			WithType("automator_not_found").
			WithDetail("automator not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	default:
		problem := problems.NewStatusProblem(fiber.StatusInternalServerError).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
