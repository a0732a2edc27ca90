package encoding

import (
	"errors"
	"math"
	"testing"
)

func TestVectorRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		vector []float32
	}{
		{"simple", []float32{1.0, 2.0, 3.0}},
		{"empty", []float32{}},
		{"single", []float32{42.0}},
		{"negative", []float32{-1.5, 0.0, 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeVector(tt.vector)
			if err != nil {
				t.Fatalf("EncodeVector() error = %v", err)
			}

			decoded, err := DecodeVector(encoded)
			if err != nil {
				t.Fatalf("DecodeVector() error = %v", err)
			}
			if len(decoded) != len(tt.vector) {
				t.Fatalf("decoded %d components, want %d", len(decoded), len(tt.vector))
			}
			for i := range tt.vector {
				if decoded[i] != tt.vector[i] {
					t.Errorf("component %d = %v, want %v", i, decoded[i], tt.vector[i])
				}
			}
		})
	}
}

func TestVectorRoundTripLarge(t *testing.T) {
	vector := make([]float32, 1000)
	for i := range vector {
		vector[i] = float32(i) * 0.1
	}

	encoded, err := EncodeVector(vector)
	if err != nil {
		t.Fatalf("EncodeVector() error = %v", err)
	}
	if len(encoded) != 4+4*len(vector) {
		t.Errorf("encoded length = %d, want %d", len(encoded), 4+4*len(vector))
	}

	decoded, err := DecodeVector(encoded)
	if err != nil {
		t.Fatalf("DecodeVector() error = %v", err)
	}
	for i := range vector {
		if decoded[i] != vector[i] {
			t.Fatalf("component %d = %v, want %v", i, decoded[i], vector[i])
		}
	}
}

func TestEncodeNilVector(t *testing.T) {
	if _, err := EncodeVector(nil); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("EncodeVector(nil) error = %v, want ErrInvalidVector", err)
	}
}

func TestDecodeInvalidData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"short header", []byte{1, 2}},
		{"negative length", []byte{0xff, 0xff, 0xff, 0xff}},
		{"truncated payload", []byte{2, 0, 0, 0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeVector(tt.data); !errors.Is(err, ErrInvalidVector) {
				t.Errorf("DecodeVector() error = %v, want ErrInvalidVector", err)
			}
		})
	}
}

func TestValidateVector(t *testing.T) {
	if err := ValidateVector([]float32{1, 2, 3}); err != nil {
		t.Errorf("ValidateVector() error = %v, want nil", err)
	}
	if err := ValidateVector(nil); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("ValidateVector(nil) error = %v, want ErrInvalidVector", err)
	}
	if err := ValidateVector([]float32{float32(math.NaN())}); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("ValidateVector(NaN) error = %v, want ErrInvalidVector", err)
	}
	if err := ValidateVector([]float32{float32(math.Inf(1))}); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("ValidateVector(Inf) error = %v, want ErrInvalidVector", err)
	}
}
