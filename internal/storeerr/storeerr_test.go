package storeerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidEnumMessage(t *testing.T) {
	err := InvalidEnum("reliability_level", "x", "Nivel de confianza", "Niveles válidos", []string{"bajo", "medio", "alto"})

	assert.Equal(t, KindInvalidEnum, err.Kind)
	assert.Equal(t, "Nivel de confianza 'x' no válido. Niveles válidos: bajo, medio, alto", err.Error())
	assert.Equal(t, []string{"bajo", "medio", "alto"}, err.Allowed)
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NotFound("case_id", "CASE-999", "Caso con ID 'CASE-999' no encontrado."))

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.True(t, errors.Is(wrapped, &Error{Kind: KindNotFound}))
	assert.False(t, errors.Is(wrapped, &Error{Kind: KindConflict}))
}

func TestOneOf(t *testing.T) {
	set := []string{"a", "b"}
	assert.True(t, OneOf("a", set))
	assert.False(t, OneOf("A", set))
	assert.False(t, OneOf("", set))
}

func TestInvalidEnumf(t *testing.T) {
	err := InvalidEnumf("specialty", "magia", []string{"corrupción", "desapariciones"}, "Especialidad '%s' no válida. Especialidades válidas: %s")

	assert.Equal(t, KindInvalidEnum, KindOf(err))
	assert.Equal(t, "Especialidad 'magia' no válida. Especialidades válidas: corrupción, desapariciones", err.Error())
}
