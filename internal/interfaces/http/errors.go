package http

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Reabastecimiento-api/internal/application/dto"
	"github.com/jhoicas/Reabastecimiento-api/internal/domain"
)

// statusFor traduce la familia del error al código HTTP.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusServiceUnavailable
	}
}

// writeError responde con el cuerpo de error estándar. Los errores sin etiqueta se reportan
// como STORAGE sin filtrar su detalle.
func writeError(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:    "STORAGE",
			Kind:    string(domain.KindStorage),
			Message: "almacenamiento no disponible, reintente la operación",
		})
	}
	body := dto.ErrorResponse{Code: de.Code, Kind: string(de.Kind), Message: de.Error()}
	if de.Code == "INSUFFICIENT_STOCK" {
		available := de.Available
		body.Available = &available
	}
	return c.Status(statusFor(de.Kind)).JSON(body)
}

// validatable lo implementan los DTO de entrada.
type validatable interface {
	Validate() error
}

// parseBody decodifica y valida el cuerpo. Devuelve un *domain.Error listo para writeError.
func parseBody(c *fiber.Ctx, in validatable) error {
	if err := c.BodyParser(in); err != nil {
		return domain.InvalidInput("cuerpo inválido")
	}
	return validate(in)
}

// validate mapea los errores de ozzo: un campo quantity inválido es INVALID_QUANTITY.
func validate(in validatable) error {
	err := in.Validate()
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		if _, ok := verrs["quantity"]; ok {
			de := domain.InvalidQuantity(0)
			de.Message = "quantity: " + verrs["quantity"].Error()
			return de
		}
		return domain.InvalidInput(verrs.Error())
	}
	return domain.InvalidInput(err.Error())
}

// pageParams lee limit/offset con los límites de dto.PageRequest.
func pageParams(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultLimit), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}
