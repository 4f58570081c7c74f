package observability

import "time"

// Stage names the step of frame construction that failed.
type Stage string

const (
	StagePad         Stage = "pad"
	StageMessageKey  Stage = "message_key"
	StageKeyMaterial Stage = "key_material"
	StageEncrypt     Stage = "encrypt"
	StageFrame       Stage = "frame"
)

type SendResult string

const (
	SendResultOK             SendResult = "ok"
	SendResultBuildError     SendResult = "build_error"
	SendResultTransportError SendResult = "transport_error"
)

// FrameObserver receives frame construction and send events.
type FrameObserver interface {
	FrameBuilt(source string, size int, d time.Duration)
	BuildFailed(stage Stage)
	Send(result SendResult)
}

type noopFrameObserver struct{}

func (noopFrameObserver) FrameBuilt(string, int, time.Duration) {}
func (noopFrameObserver) BuildFailed(Stage)                     {}
func (noopFrameObserver) Send(SendResult)                       {}

// NoopFrameObserver is used when metrics are disabled.
var NoopFrameObserver FrameObserver = noopFrameObserver{}
