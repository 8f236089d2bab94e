package playback

// NoticeKind classifies user-facing playback messages.
type NoticeKind int

const (
	// NoticeTransient is shown briefly, e.g. while reconnecting.
	NoticeTransient NoticeKind = iota
	// NoticeTerminal stays until playback succeeds again.
	NoticeTerminal
	// NoticeValidation reports a rejected source.
	NoticeValidation
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeTransient:
		return "transient"
	case NoticeTerminal:
		return "terminal"
	case NoticeValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Notice is a message for the presentation layer.
type Notice struct {
	Kind    NoticeKind
	Message string
}
