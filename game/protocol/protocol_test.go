package protocol

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/wricardo/fogmaze/game/maze"
)

func TestNew_UniqueIDsAcrossGoroutines(t *testing.T) {
	const workers, perWorker = 8, 500

	var mu sync.Mutex
	seen := make(map[int64]bool, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, NewRequest("x").ID)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if seen[id] {
					t.Errorf("duplicate id %d", id)
				}
				seen[id] = true
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("expected %d ids, got %d", workers*perWorker, len(seen))
	}
}

func TestAnswer_CopiesID(t *testing.T) {
	req := NewRequest(MoveRequest(maze.Down))
	ans := req.Answer("move dn=yes")

	if ans.ID != req.ID {
		t.Errorf("answer id %d, want %d", ans.ID, req.ID)
	}
	if ans.Type != Answer {
		t.Errorf("answer type %v, want ANSWER", ans.Type)
	}
	if next := NewInform("hi"); next.ID <= req.ID {
		t.Errorf("new message id %d should be greater than %d", next.ID, req.ID)
	}
}

func TestEncodeDecode(t *testing.T) {
	m := NewStart("#1 alice")
	data, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"type":"START"`) {
		t.Errorf("expected textual type in %s", data)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got != m {
		t.Errorf("decoded %+v, want %+v", got, m)
	}

	if _, err := Decode([]byte(`{"id":1,"type":"SHOUT","data":""}`)); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed envelope")
	}
}

func TestMoveRequest(t *testing.T) {
	for _, d := range maze.Directions {
		data := MoveRequest(d)
		got, ok := ParseMoveRequest(data)
		if !ok || got != d {
			t.Errorf("ParseMoveRequest(%q) = %v, %v", data, got, ok)
		}
	}

	if MoveRequest(maze.Down) != "move down" {
		t.Errorf("unexpected request text %q", MoveRequest(maze.Down))
	}
	if d, ok := ParseMoveRequest("move rt"); !ok || d != maze.Right {
		t.Errorf("abbreviated request not accepted: %v %v", d, ok)
	}

	for _, bad := range []string{"jump", "move", "move diagonal", "MOVE up"} {
		if _, ok := ParseMoveRequest(bad); ok {
			t.Errorf("ParseMoveRequest(%q) should fail", bad)
		}
	}
}

func TestMoveAnswer(t *testing.T) {
	tests := []struct {
		d    maze.Direction
		code Code
		want string
	}{
		{maze.Up, CodeNo, "move up=no"},
		{maze.Right, CodeYes, "move rt=yes"},
		{maze.Down, CodeExit, "move dn=exit"},
		{maze.Left, CodeStopped, "move lt=stopped"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := MoveAnswer(tt.d, tt.code)
			if got != tt.want {
				t.Fatalf("MoveAnswer = %q, want %q", got, tt.want)
			}
			d, code, err := ParseMoveAnswer(got)
			if err != nil {
				t.Fatal(err)
			}
			if d != tt.d || code != tt.code {
				t.Errorf("parsed %v %v, want %v %v", d, code, tt.d, tt.code)
			}
		})
	}

	for _, bad := range []string{"move up", "move up=maybe", "move xx=yes", NotRecognized("jump")} {
		if _, _, err := ParseMoveAnswer(bad); !errors.Is(err, ErrNotMoveAnswer) {
			t.Errorf("ParseMoveAnswer(%q) expected ErrNotMoveAnswer, got %v", bad, err)
		}
	}
}

func TestPipe(t *testing.T) {
	a, b := Pipe()

	if err := a.Send(NewInform("one")); err != nil {
		t.Fatal(err)
	}
	m, err := b.Receive()
	if err != nil || m.Data != "one" {
		t.Fatalf("Receive = %+v, %v", m, err)
	}

	// buffered messages survive close
	if err := b.Send(NewEnd()); err != nil {
		t.Fatal(err)
	}
	b.Close()
	m, err = a.Receive()
	if err != nil || m.Type != End {
		t.Fatalf("expected END before close error, got %+v, %v", m, err)
	}

	if _, err := a.Receive(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := a.Send(NewInform("late")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on send, got %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second close returned %v", err)
	}
}

func TestPipe_CloseUnblocksReceive(t *testing.T) {
	a, b := Pipe()
	errc := make(chan error, 1)
	go func() {
		_, err := a.Receive()
		errc <- err
	}()
	b.Close()
	if err := <-errc; !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
