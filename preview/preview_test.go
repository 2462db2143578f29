package preview

import "testing"

func TestNewBufferSeed(t *testing.T) {
	b := NewBuffer()
	got := b.Samples()
	if len(got) != seedLen {
		t.Fatalf("fresh buffer has %d samples, want %d", len(got), seedLen)
	}
	for i, s := range got {
		if s != 0 {
			t.Fatalf("seed sample %d = %v, want 0", i, s)
		}
	}
}

func TestPushSmallFrameReplacesContent(t *testing.T) {
	b := NewBuffer()
	frame := make([]float32, 50)
	for i := range frame {
		frame[i] = float32(i) / 100
	}
	b.Push(frame)

	got := b.Samples()
	if len(got) != 50 {
		t.Fatalf("len = %d, want 50", len(got))
	}
	for i := range frame {
		if got[i] != frame[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], frame[i])
		}
	}
}

func TestPushLargeFrameKeepsTail(t *testing.T) {
	b := NewBuffer()
	frame := make([]float32, 400)
	for i := range frame {
		frame[i] = float32(i)
	}
	b.Push(frame)

	got := b.Samples()
	if len(got) != MaxSamples {
		t.Fatalf("len = %d, want %d", len(got), MaxSamples)
	}
	// The last 300 samples of the frame, i.e. values 100..399.
	for i := range got {
		if got[i] != float32(100+i) {
			t.Fatalf("sample %d = %v, want %v", i, got[i], float32(100+i))
		}
	}
}

func TestPushIsSnapshotNotHistory(t *testing.T) {
	b := NewBuffer()
	b.Push(make([]float32, 250))
	b.Push(make([]float32, 40))
	if got := len(b.Samples()); got != 40 {
		t.Fatalf("len after second push = %d, want 40 (no accumulation)", got)
	}
}

func TestSamplesReturnsCopy(t *testing.T) {
	b := NewBuffer()
	b.Push([]float32{1, 2, 3})
	got := b.Samples()
	got[0] = 99
	if b.Samples()[0] != 1 {
		t.Error("Samples must return a copy, not the backing slice")
	}
}
