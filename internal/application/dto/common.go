package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusResponse respuesta mínima para operaciones sin cuerpo propio.
type StatusResponse struct {
	OK bool `json:"ok"`
}
