package pipeline

// Kind identifies a remote pipeline event.
type Kind int

const (
	KindUnknown Kind = iota
	KindRunStart
	KindSTTEnd
	KindTTSStart
	KindTTSEnd
	KindRunEnd
	KindError
)

const (
	FieldText    = "text"
	FieldURL     = "url"
	FieldCode    = "code"
	FieldMessage = "message"
)

func (k Kind) String() string {
	switch k {
	case KindRunStart:
		return "run-start"
	case KindSTTEnd:
		return "stt-end"
	case KindTTSStart:
		return "tts-start"
	case KindTTSEnd:
		return "tts-end"
	case KindRunEnd:
		return "run-end"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseKind maps a wire name to a Kind. Names it does not know (including
// pipeline stages this satellite does not react to, such as "stt-start")
// map to KindUnknown.
func ParseKind(name string) Kind {
	switch name {
	case "run-start":
		return KindRunStart
	case "stt-end":
		return KindSTTEnd
	case "tts-start":
		return KindTTSStart
	case "tts-end":
		return KindTTSEnd
	case "run-end":
		return KindRunEnd
	case "error":
		return KindError
	default:
		return KindUnknown
	}
}

type Field struct {
	Name  string
	Value string
}

// Record is an event as delivered by the control channel. Field names are
// not guaranteed to be unique.
type Record struct {
	Kind Kind
	Name string
	Data []Field
}

// Event is the typed form of a Record.
type Event interface {
	Kind() Kind
}

type RunStart struct{}

type STTEnd struct {
	Text string
}

type TTSStart struct {
	Text string
}

type TTSEnd struct {
	URL string
}

type RunEnd struct{}

type Error struct {
	Code    string
	Message string
}

type Unknown struct {
	Name string
}

func (RunStart) Kind() Kind { return KindRunStart }
func (STTEnd) Kind() Kind   { return KindSTTEnd }
func (TTSStart) Kind() Kind { return KindTTSStart }
func (TTSEnd) Kind() Kind   { return KindTTSEnd }
func (RunEnd) Kind() Kind   { return KindRunEnd }
func (Error) Kind() Kind    { return KindError }
func (Unknown) Kind() Kind  { return KindUnknown }

// Decode converts a record into its typed variant. Missing fields decode to
// the empty string; when a name repeats, the first occurrence wins.
func Decode(rec Record) Event {
	switch rec.Kind {
	case KindRunStart:
		return RunStart{}
	case KindSTTEnd:
		v := lookup(rec.Data, FieldText)
		return STTEnd{Text: v[FieldText]}
	case KindTTSStart:
		v := lookup(rec.Data, FieldText)
		return TTSStart{Text: v[FieldText]}
	case KindTTSEnd:
		v := lookup(rec.Data, FieldURL)
		return TTSEnd{URL: v[FieldURL]}
	case KindRunEnd:
		return RunEnd{}
	case KindError:
		v := lookup(rec.Data, FieldCode, FieldMessage)
		return Error{Code: v[FieldCode], Message: v[FieldMessage]}
	default:
		return Unknown{Name: rec.Name}
	}
}

func lookup(data []Field, names ...string) map[string]string {
	found := make(map[string]string, len(names))
	for _, f := range data {
		if len(found) == len(names) {
			break
		}
		if _, seen := found[f.Name]; seen {
			continue
		}
		for _, name := range names {
			if f.Name == name {
				found[name] = f.Value
				break
			}
		}
	}
	return found
}
