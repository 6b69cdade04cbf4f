package token

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const defaultLength = 9

// Generator produces short uppercase base36 tokens from random UUIDs,
// e.g. "K3Q9ZP1XA".
type Generator struct {
	length int
}

func New(length int) *Generator {
	if length <= 0 {
		length = defaultLength
	}

	return &Generator{length: length}
}

func (g *Generator) GetID(_ context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("new uuid: %w", err)
	}

	s := strings.ToUpper(new(big.Int).SetBytes(id[:]).Text(36)) //nolint:gomnd
	if len(s) < g.length {
		s = strings.Repeat("0", g.length-len(s)) + s
	}

	return s[len(s)-g.length:], nil
}
