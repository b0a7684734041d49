package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier(map[string]string{"tok": "u1"})

	p, err := v.Verify(context.Background(), "tok")
	assert.NoError(t, err)
	assert.Equal(t, "u1", p.ID)

	_, err = v.Verify(context.Background(), "wrong")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewStaticVerifierFromEnv(t *testing.T) {
	v := NewStaticVerifierFromEnv("tok1=u1; tok2=u2 ;;broken")

	p, err := v.Verify(context.Background(), "tok1")
	assert.NoError(t, err)
	assert.Equal(t, "u1", p.ID)

	p, err = v.Verify(context.Background(), "tok2")
	assert.NoError(t, err)
	assert.Equal(t, "u2", p.ID)

	_, err = v.Verify(context.Background(), "broken")
	assert.Error(t, err)
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	ctx := WithPrincipal(context.Background(), Principal{ID: "u1"})

	p, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", p.ID)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
