package notify

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJSONLAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "notifications.jsonl")
	sink, err := OpenJSONL(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sink.Notify(Notification{Time: time.Unix(1700000000, 0).UTC(), Level: LevelInfo, Message: "Step 1/3: Depositing to Venus Protocol", Action: "invest"})
	sink.Notify(Notification{Level: LevelSuccess, Message: "Investment successful!"})
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer file.Close()

	var got []Notification
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var n Notification
		if err := json.Unmarshal(scanner.Bytes(), &n); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		got = append(got, n)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	if got[0].Action != "invest" || got[1].Level != LevelSuccess {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestFanoutStampsTime(t *testing.T) {
	rec := &Recorder{}
	var buf bytes.Buffer
	Fanout{rec, NewConsole(&buf), nil}.Notify(Notification{Level: LevelError, Message: "Failed: Transaction cancelled"})

	last, ok := rec.Last()
	if !ok || last.Time.IsZero() {
		t.Fatalf("fanout should stamp time: %+v", last)
	}
	if buf.String() != "[error] Failed: Transaction cancelled\n" {
		t.Fatalf("console mismatch: %q", buf.String())
	}
}
