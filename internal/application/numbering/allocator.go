package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NumberSource expone la numeración ya existente de una tabla de documentos
// (ventas o devoluciones). Lo implementan los repositorios correspondientes.
type NumberSource interface {
	// LastNumber devuelve el número más alto que empieza con prefix, o "" si no hay.
	LastNumber(prefix string) (string, error)
	NumberExists(number string) (bool, error)
}

// Allocator genera números de documento legibles y únicos, con alcance por día
// calendario: PREFIJO-AAAAMMDD-NNNN.
//
// Es un generador de mejor esfuerzo (leer máximo, incrementar, reverificar,
// reintentar), no un contador atómico estricto: tras agotar los reintentos cae
// a un sufijo de timestamp de alta resolución que garantiza unicidad
// sacrificando la secuencialidad. Una secuencia de base de datos sería la
// construcción más segura bajo concurrencia sostenida.
type Allocator struct {
	retries int
	delay   time.Duration
	now     func() time.Time
	sleep   func(time.Duration)
}

// NewAllocator construye el asignador con 10 reintentos y 25ms entre intentos.
func NewAllocator() *Allocator {
	return &Allocator{
		retries: 10,
		delay:   25 * time.Millisecond,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Allocate genera el siguiente número bajo el prefijo del día de hoy.
func (a *Allocator) Allocate(source NumberSource, prefix string) (string, error) {
	scope := fmt.Sprintf("%s-%s-", prefix, a.now().Format("20060102"))

	for attempt := 0; attempt < a.retries; attempt++ {
		if attempt > 0 {
			a.sleep(a.delay)
		}

		last, err := source.LastNumber(scope)
		if err != nil {
			return "", fmt.Errorf("consultar último número: %w", err)
		}
		candidate := scope + fmt.Sprintf("%04d", nextSequence(last))

		// Reverificación: entre la lectura del máximo y aquí otro proceso pudo
		// tomar el mismo consecutivo.
		exists, err := source.NumberExists(candidate)
		if err != nil {
			return "", fmt.Errorf("verificar número: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	// Colisión en todos los intentos: sufijo de timestamp, único pero no secuencial.
	return fmt.Sprintf("%s%d", scope, a.now().UnixNano()), nil
}

// nextSequence extrae el consecutivo final de un número existente y devuelve el
// siguiente. Sin número previo (o sufijo no numérico, ej. un fallback de
// timestamp corrupto) arranca en 1.
func nextSequence(last string) int {
	if last == "" {
		return 1
	}
	idx := strings.LastIndexByte(last, '-')
	if idx < 0 || idx == len(last)-1 {
		return 1
	}
	seq, err := strconv.Atoi(last[idx+1:])
	if err != nil || seq < 0 {
		return 1
	}
	return seq + 1
}
