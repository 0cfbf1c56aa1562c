package notify

// Triggers is the set of notification channels a voice session fires. Any
// callback may be left nil.
type Triggers struct {
	OnStart    func()
	OnEnd      func()
	OnSTTEnd   func(text string)
	OnTTSStart func(text string)
	OnTTSEnd   func(url string)
	OnError    func(code, message string)
}

func (t Triggers) Start() {
	if t.OnStart != nil {
		t.OnStart()
	}
}

func (t Triggers) End() {
	if t.OnEnd != nil {
		t.OnEnd()
	}
}

func (t Triggers) STTEnd(text string) {
	if t.OnSTTEnd != nil {
		t.OnSTTEnd(text)
	}
}

func (t Triggers) TTSStart(text string) {
	if t.OnTTSStart != nil {
		t.OnTTSStart(text)
	}
}

func (t Triggers) TTSEnd(url string) {
	if t.OnTTSEnd != nil {
		t.OnTTSEnd(url)
	}
}

func (t Triggers) Error(code, message string) {
	if t.OnError != nil {
		t.OnError(code, message)
	}
}

// Merge fans each notification out to every given set, in order.
func Merge(sets ...Triggers) Triggers {
	return Triggers{
		OnStart: func() {
			for _, s := range sets {
				s.Start()
			}
		},
		OnEnd: func() {
			for _, s := range sets {
				s.End()
			}
		},
		OnSTTEnd: func(text string) {
			for _, s := range sets {
				s.STTEnd(text)
			}
		},
		OnTTSStart: func(text string) {
			for _, s := range sets {
				s.TTSStart(text)
			}
		},
		OnTTSEnd: func(url string) {
			for _, s := range sets {
				s.TTSEnd(url)
			}
		},
		OnError: func(code, message string) {
			for _, s := range sets {
				s.Error(code, message)
			}
		},
	}
}
