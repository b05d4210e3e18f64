package player

import (
	"strings"
	"testing"
	"time"

	"github.com/DexterLB/mpvipc"
)

func TestTranslateEvent(t *testing.T) {
	var progress Progress

	tests := []struct {
		name  string
		event *mpvipc.Event
		ok    bool
		want  Event
	}{
		{"пауза", &mpvipc.Event{ID: pauseProperty, Data: true}, true, Event{Kind: EventState, State: StatePaused}},
		{"снятие паузы", &mpvipc.Event{ID: pauseProperty, Data: false}, true, Event{Kind: EventState, State: StatePlaying}},
		{"длительность", &mpvipc.Event{ID: durationProperty, Data: 120.0}, true, Event{Kind: EventProgress, Progress: Progress{Duration: 2 * time.Minute}}},
		{"позиция", &mpvipc.Event{ID: timePosProperty, Data: 1.5}, true, Event{Kind: EventProgress, Progress: Progress{Position: 1500 * time.Millisecond, Duration: 2 * time.Minute}}},
		{"позиция без данных", &mpvipc.Event{ID: timePosProperty}, false, Event{}},
		{"конец файла", &mpvipc.Event{Name: "end-file", Reason: "eof"}, true, Event{Kind: EventEnded}},
		{"замена файла", &mpvipc.Event{Name: "end-file", Reason: "stop"}, false, Event{}},
		{"простой", &mpvipc.Event{Name: "idle"}, true, Event{Kind: EventState, State: StateIdle}},
		{"неизвестное событие", &mpvipc.Event{Name: "seek"}, false, Event{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := translateEvent(tt.event, &progress)
			if ok != tt.ok {
				t.Fatalf("ok = %v, ожидалось %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Получено %+v, ожидалось %+v", got, tt.want)
			}
		})
	}
}

func TestTranslateEndFileError(t *testing.T) {
	var progress Progress
	got, ok := translateEvent(&mpvipc.Event{Name: "end-file", Reason: "error"}, &progress)
	if !ok || got.Kind != EventError || got.Err == nil {
		t.Errorf("Ожидалось событие ошибки, получено %+v", got)
	}
}

func TestMPVArgs(t *testing.T) {
	args := strings.Join(mpvArgs("/tmp/mpv.sock"), " ")
	for _, want := range []string{"--idle", "--input-ipc-server=/tmp/mpv.sock"} {
		if !strings.Contains(args, want) {
			t.Errorf("Аргументы %q не содержат %q", args, want)
		}
	}
}
