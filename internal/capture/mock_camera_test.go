package capture

import (
	"errors"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	frame1 := gocv.NewMatWithSize(600, 800, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(600, 800, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	f1, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	f1.Close()

	f2, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	f2.Close()

	// Third read should fail (no loop)
	_, err = cam.ReadFrame()
	if err == nil {
		t.Error("expected error after all frames consumed")
	}
}

func TestMockCamera_Loop(t *testing.T) {
	frame := gocv.NewMatWithSize(600, 800, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_Failures(t *testing.T) {
	frame := gocv.NewMatWithSize(60, 80, gocv.MatTypeCV8UC3)
	defer frame.Close()

	t.Run("open error", func(t *testing.T) {
		errNoDevice := errors.New("no device")
		cam := NewMockCamera([]*gocv.Mat{&frame}, true)
		cam.SetOpenError(errNoDevice)

		if err := cam.Open(); !errors.Is(err, errNoDevice) {
			t.Errorf("Open() error = %v, want %v", err, errNoDevice)
		}
		if cam.IsOpen() {
			t.Error("camera open after failed Open")
		}
	})

	t.Run("scripted read failure", func(t *testing.T) {
		cam := NewMockCamera([]*gocv.Mat{&frame}, true)
		cam.FailReads(2)
		cam.Open()
		defer cam.Close()

		for i := 1; i <= 3; i++ {
			f, err := cam.ReadFrame()
			if i == 2 {
				if !errors.Is(err, ErrEmptyFrame) {
					t.Errorf("read %d error = %v, want ErrEmptyFrame", i, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("read %d error = %v", i, err)
			}
			f.Close()
		}
	})

	t.Run("read before open", func(t *testing.T) {
		cam := NewMockCamera([]*gocv.Mat{&frame}, true)
		if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
			t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
		}
	})

	t.Run("counts open and close", func(t *testing.T) {
		cam := NewMockCamera(nil, false)
		cam.Open()
		cam.Close()
		cam.Close()
		if cam.Opens() != 1 || cam.Closes() != 2 {
			t.Errorf("opens/closes = %d/%d, want 1/2", cam.Opens(), cam.Closes())
		}
	})
}

func TestMirror(t *testing.T) {
	frame := SolidFrame(4, 2, color.RGBA{})
	defer frame.Close()
	frame.SetUCharAt(0, 0, 255)

	Mirror(&frame)

	if got := frame.GetVecbAt(0, 3)[0]; got != 255 {
		t.Errorf("mirrored pixel blue = %d, want 255", got)
	}
	if got := frame.GetVecbAt(0, 0)[0]; got != 0 {
		t.Errorf("original pixel blue = %d, want 0", got)
	}
}

func TestSolidFrame(t *testing.T) {
	frame := SolidFrame(8, 6, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	defer frame.Close()

	if frame.Cols() != 8 || frame.Rows() != 6 {
		t.Fatalf("size = %dx%d, want 8x6", frame.Cols(), frame.Rows())
	}
	px := frame.GetVecbAt(3, 4)
	if px[0] != 30 || px[1] != 20 || px[2] != 10 {
		t.Errorf("pixel BGR = %v, want [30 20 10]", px)
	}
}
