package console

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormValidatorOrder(t *testing.T) {
	v := NewFormValidator()
	require.NoError(t, v.Validate(FormOrder, FormValues{"user_id": "12", "status": "pending"}.OrderPayload()))

	for name, values := range map[string]FormValues{
		"missing":    {},
		"zero":       {"user_id": "0"},
		"not number": {"user_id": "abc"},
		"bad status": {"user_id": "3", "status": "lost"},
	} {
		err := v.Validate(FormOrder, values.OrderPayload())
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrInvalidForm), name)
		var formErr *FormError
		require.True(t, errors.As(err, &formErr), name)
		assert.Equal(t, "Erreur: Le client est requis", formErr.Message)
	}
}

func TestFormValidatorClientRequiresUsername(t *testing.T) {
	v := NewFormValidator()
	err := v.Validate(FormClient, FormValues{"username": "   ", "email": "a@b.c"}.ClientPayload())
	require.ErrorIs(t, err, ErrInvalidForm)
	require.NoError(t, v.Validate(FormClient, FormValues{"username": "jdoe"}.ClientPayload()))
}

func TestFormValidatorProduct(t *testing.T) {
	v := NewFormValidator()
	require.NoError(t, v.Validate(FormProduct, FormValues{"name": "Chaise", "price": "12,50", "stock": "3"}.ProductPayload()))
	assert.ErrorIs(t, v.Validate(FormProduct, FormValues{"price": "10"}.ProductPayload()), ErrInvalidForm)
	assert.ErrorIs(t, v.Validate(FormProduct, FormValues{"name": "x", "stock": "-1"}.ProductPayload()), ErrInvalidForm)
}

func TestFormValidatorUnknownForm(t *testing.T) {
	err := NewFormValidator().Validate("invoice", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidForm))
}

func TestNotifierToasts(t *testing.T) {
	n := NewNotifier(0)
	assert.Equal(t, AppToastDismiss, n.Dismiss())

	toast := n.Success("ok")
	_, err := uuid.Parse(toast.ID)
	require.NoError(t, err)
	assert.Equal(t, ToastSuccess, toast.Kind)
	assert.Equal(t, int64(2200), toast.DismissMS)
	assert.NotEqual(t, toast.ID, n.Info("ok").ID)

	custom := NewNotifier(CustomToastDismiss)
	assert.Equal(t, int64(4000), custom.Error("x").DismissMS)
}

func TestNotifierRemoteStripsMarkup(t *testing.T) {
	n := NewNotifier(time.Second)
	toast := n.Remote(`<b>Cet identifiant</b> existe déjà<script>alert(1)</script>`, "Erreur")
	assert.Equal(t, ToastError, toast.Kind)
	assert.Equal(t, "Cet identifiant existe déjà", toast.Message)

	assert.Equal(t, "Erreur lors de la création", n.Remote("  ", "Erreur lors de la création").Message)
	assert.Equal(t, "l'email & co", n.PlainText("l'email & co"))
}
