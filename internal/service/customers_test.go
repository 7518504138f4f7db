package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

func TestResolveCustomerIsIdempotent(t *testing.T) {
	svc, _ := fixture(t, 1)
	ctx := context.Background()
	details := model.CustomerDetails{Name: "Ann", Email: "Ann@Example.com", Phone: "555"}

	id1, err := svc.Directory.ResolveCustomer(ctx, details, false)
	require.NoError(t, err)
	id2, err := svc.Directory.ResolveCustomer(ctx, model.CustomerDetails{Name: "Someone Else", Email: "ann@example.com"}, true)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	c, err := svc.Directory.GetCustomerByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", c.Name)
	assert.Equal(t, "ann@example.com", c.Email)
	assert.Equal(t, "555", c.Phone)
}

func TestUpsertCustomerLastWriteWins(t *testing.T) {
	svc, _ := fixture(t, 1)
	ctx := context.Background()

	first, err := svc.Directory.UpsertCustomer(ctx, model.Customer{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	second, err := svc.Directory.UpsertCustomer(ctx, model.Customer{Name: "Ann B", Email: "ann@example.com", NewsletterOptIn: true})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ann B", second.Name)
	assert.True(t, second.NewsletterOptIn)
}

func TestCustomerLookupErrors(t *testing.T) {
	svc, _ := fixture(t, 1)
	_, err := svc.Directory.GetCustomerByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Directory.GetCustomerByEmail(context.Background(), " ")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Directory.UpsertCustomer(context.Background(), model.Customer{Name: "X", Email: "x@y"})
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)
}
