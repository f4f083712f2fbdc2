package refimpl

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestRC4EncryptDecryptRoundTrip(t *testing.T) {
	enc := NewRC4Encrypt([]byte("secret"))
	plaintext := []byte("the quick brown fox")
	ct, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(ct, plaintext) {
		t.Fatal("ciphertext should not equal plaintext")
	}
	pt, err := enc.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Fatalf("got %q, want %q", pt, plaintext)
	}
}

func TestMemoryDeviceReadWriteTruncate(t *testing.T) {
	d := NewMemoryDevice()
	if _, err := d.WriteAt([]byte("hello"), 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if _, err := d.WriteAt([]byte("world"), 10); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	buf := make([]byte, 5)
	if _, err := d.ReadAt(buf, 10); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(buf) != "world" {
		t.Fatalf("got %q", buf)
	}
	if err := d.Truncate(5); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if string(d.Bytes()) != "hello" {
		t.Fatalf("got %q", d.Bytes())
	}
}

func TestFileDeviceReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.bin")
	d, err := OpenFileDevice(path)
	if err != nil {
		t.Fatalf("OpenFileDevice: %v", err)
	}
	defer d.Close()

	if _, err := d.WriteAt([]byte("abc"), 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	buf := make([]byte, 3)
	if _, err := d.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(buf) != "abc" {
		t.Fatalf("got %q", buf)
	}
}

func TestStaticFontMetricsWidthFallback(t *testing.T) {
	m := NewStaticFontMetrics(1000, 800, -200, 500, map[rune]int{'A': 700})
	if m.WidthOf('A') != 700 {
		t.Fatalf("got %d", m.WidthOf('A'))
	}
	if m.WidthOf('x') != 500 {
		t.Fatalf("got %d", m.WidthOf('x'))
	}
}
