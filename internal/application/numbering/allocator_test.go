package numbering

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource simula la numeración existente en una tabla de documentos.
type fakeSource struct {
	last       string
	taken      map[string]bool
	lastCalls  int
	existCalls int
}

func (f *fakeSource) LastNumber(prefix string) (string, error) {
	f.lastCalls++
	return f.last, nil
}

func (f *fakeSource) NumberExists(number string) (bool, error) {
	f.existCalls++
	return f.taken[number], nil
}

func fixedAllocator(now time.Time) *Allocator {
	a := NewAllocator()
	a.now = func() time.Time { return now }
	a.sleep = func(time.Duration) {} // sin esperas en tests
	return a
}

var testDay = time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

func TestAllocate_PrimerNumeroDelDia(t *testing.T) {
	a := fixedAllocator(testDay)
	src := &fakeSource{taken: map[string]bool{}}

	got, err := a.Allocate(src, "INV")
	require.NoError(t, err)
	assert.Equal(t, "INV-20260829-0001", got, "sin números previos debe arrancar en 0001")
}

func TestAllocate_IncrementaConsecutivo(t *testing.T) {
	a := fixedAllocator(testDay)
	src := &fakeSource{last: "INV-20260829-0041", taken: map[string]bool{}}

	got, err := a.Allocate(src, "INV")
	require.NoError(t, err)
	assert.Equal(t, "INV-20260829-0042", got, "debe continuar el consecutivo más alto del día")
}

// Si la reverificación detecta que otro proceso tomó el candidato, se relee el
// máximo y se reintenta.
func TestAllocate_ReintentaTrasColision(t *testing.T) {
	a := fixedAllocator(testDay)
	src := &fakeSource{
		last:  "INV-20260829-0007",
		taken: map[string]bool{"INV-20260829-0008": true},
	}
	// En el segundo intento el máximo ya refleja al competidor.
	firstCall := true
	wrapped := &raceSource{inner: src, onLast: func() {
		if !firstCall {
			src.last = "INV-20260829-0008"
		}
		firstCall = false
	}}

	got, err := a.Allocate(wrapped, "INV")
	require.NoError(t, err)
	assert.Equal(t, "INV-20260829-0009", got, "tras la colisión debe tomar el siguiente consecutivo")
	assert.GreaterOrEqual(t, src.lastCalls, 2, "debió releer el máximo al reintentar")
}

// raceSource permite mutar la fuente entre lecturas para simular concurrencia.
type raceSource struct {
	inner  *fakeSource
	onLast func()
}

func (r *raceSource) LastNumber(prefix string) (string, error) {
	r.onLast()
	return r.inner.LastNumber(prefix)
}

func (r *raceSource) NumberExists(number string) (bool, error) {
	return r.inner.NumberExists(number)
}

// Con colisión sostenida en todos los reintentos cae al sufijo de timestamp:
// único aunque ya no secuencial.
func TestAllocate_FallbackTimestampTrasAgotarReintentos(t *testing.T) {
	a := fixedAllocator(testDay)
	src := &exhaustedSource{}

	got, err := a.Allocate(src, "INV")
	require.NoError(t, err)
	expected := fmt.Sprintf("INV-20260829-%d", testDay.UnixNano())
	assert.Equal(t, expected, got, "agotados los reintentos debe usar el timestamp de alta resolución")
	assert.Equal(t, 10, src.existCalls, "debe reverificar exactamente una vez por reintento")
}

// exhaustedSource reporta todo candidato como tomado.
type exhaustedSource struct {
	existCalls int
}

func (e *exhaustedSource) LastNumber(prefix string) (string, error) { return "", nil }

func (e *exhaustedSource) NumberExists(number string) (bool, error) {
	e.existCalls++
	return true, nil
}

func TestNextSequence(t *testing.T) {
	assert.Equal(t, 1, nextSequence(""), "sin número previo arranca en 1")
	assert.Equal(t, 2, nextSequence("INV-20260829-0001"))
	assert.Equal(t, 100, nextSequence("INV-20260829-0099"))
	assert.Equal(t, 1, nextSequence("sin-sufijo-numerico-x"), "sufijo no numérico arranca en 1")
}
