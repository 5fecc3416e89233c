package scanning

import "context"

// Camera dispositivo de captura informado por el navegador.
type Camera struct {
	ID    string
	Label string
}

// Config parámetros que recibe la librería de escaneo al iniciar.
type Config struct {
	FPS   int
	QRBox int
}

// Scanner es el colaborador externo que produce texto decodificado.
// Las callbacks se invocan de a una (nunca se solapan).
type Scanner interface {
	ListCameras(ctx context.Context) ([]Camera, error)
	Start(ctx context.Context, cameraID string, cfg Config, onDecode func(text string), onError func(err error)) error
	Stop(ctx context.Context) error
	Clear()
}

// Bridge es un Scanner alimentado desde fuera: el bucle de cámara corre en el
// navegador y entrega aquí los textos decodificados y la lista de cámaras.
type Bridge interface {
	Scanner
	Push(text string) (accepted bool, err error)
	SetCameras(cameras []Camera)
	ReportError(message string)
}
