package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidQuantity   = errors.New("la cantidad debe ser positiva")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrAlreadyReceived   = errors.New("la orden de compra ya fue recibida")
	ErrStorage           = errors.New("fallo de almacenamiento")
)

// Kind agrupa los errores por familia; es el discriminador estable que ven los colaboradores.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindConflict   Kind = "CONFLICT"
	KindNotFound   Kind = "NOT_FOUND"
	KindStorage    Kind = "STORAGE"
)

// Error es el valor de error etiquetado que devuelven las operaciones del núcleo.
// Envuelve un error centinela para que errors.Is(err, domain.ErrX) siga funcionando.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Available solo aplica a INSUFFICIENT_STOCK.
	Available int
	err       error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

// InvalidQuantity rechaza cantidades cero o negativas antes de cualquier mutación.
func InvalidQuantity(quantity int) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "INVALID_QUANTITY",
		Message: fmt.Sprintf("cantidad inválida %d: debe ser mayor que cero", quantity),
		err:     ErrInvalidQuantity,
	}
}

// InvalidInput identificador faltante u otro dato de entrada mal formado.
func InvalidInput(msg string) *Error {
	return &Error{Kind: KindValidation, Code: "INVALID_INPUT", Message: msg, err: ErrInvalidInput}
}

// InsufficientStock indica que la salida pedida excede el stock disponible.
func InsufficientStock(available, requested int) *Error {
	return &Error{
		Kind:      KindConflict,
		Code:      "INSUFFICIENT_STOCK",
		Message:   fmt.Sprintf("stock insuficiente: disponible %d, solicitado %d", available, requested),
		Available: available,
		err:       ErrInsufficientStock,
	}
}

// AlreadyReceived la orden ya está en RECEIVED; no hubo efectos.
func AlreadyReceived(poID string) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    "ALREADY_RECEIVED",
		Message: fmt.Sprintf("la orden de compra %s ya fue recibida", poID),
		err:     ErrAlreadyReceived,
	}
}

// Duplicate violación de unicidad (ej. SKU repetido).
func Duplicate(msg string) *Error {
	return &Error{Kind: KindConflict, Code: "DUPLICATE", Message: msg, err: ErrDuplicate}
}

// SupplierInUse el proveedor tiene productos asociados y no se puede eliminar.
func SupplierInUse(id string) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    "SUPPLIER_IN_USE",
		Message: fmt.Sprintf("el proveedor %s tiene productos asociados", id),
		err:     ErrConflict,
	}
}

// NotFound recurso inexistente (producto, proveedor u orden).
func NotFound(resource, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %q no encontrado", resource, id),
		err:     ErrNotFound,
	}
}

// Storage envuelve fallos de infraestructura (begin, commit, conectividad). Se puede reintentar la operación completa.
func Storage(op string, cause error) *Error {
	return &Error{
		Kind:    KindStorage,
		Code:    "STORAGE",
		Message: fmt.Sprintf("%s: %v", op, cause),
		err:     errors.Join(ErrStorage, cause),
	}
}

// KindOf devuelve la familia del error; los errores sin etiqueta se tratan como STORAGE.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorage
}
