package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// ErrNoMatch: la consulta no coincide con ningún producto. Se ofrece alta manual.
	ErrNoMatch = errors.New("ningún producto coincide")
	// ErrCameraUnavailable: sin cámara, permiso denegado o escáner ausente. Queda el ingreso manual del código.
	ErrCameraUnavailable = errors.New("cámara no disponible")
	// ErrFormClosed: el formulario ya fue enviado o cerrado.
	ErrFormClosed = errors.New("formulario cerrado")
	// ErrTooManyForms: se alcanzó el máximo de formularios abiertos.
	ErrTooManyForms = errors.New("demasiados formularios abiertos")
)
