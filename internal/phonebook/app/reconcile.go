package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/aradsms/phonebook_web/internal/phonebook/domain"
)

// reconcilePhones replaces a contact's phone set: every existing number is
// deleted and every submitted number is added. The repository only exposes
// per-number add/delete mutations, no bulk replace and no in-place update,
// so an unchanged number is still deleted and re-added.
//
// All deletes and adds are issued as one concurrent batch; ordering inside
// the batch is unconstrained because distinct numbers are independent. The
// caller must not update the contact's name fields until the whole batch
// has succeeded.
func (a *Application) reconcilePhones(ctx context.Context, contactID int64, before []domain.PhoneNumber, after []string) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, phone := range before {
		number := phone.Number
		g.Go(func() error {
			return a.contactRepo.DeletePhone(ctx, contactID, number)
		})
	}
	for _, number := range after {
		number := number
		g.Go(func() error {
			return a.contactRepo.AddPhone(ctx, contactID, number)
		})
	}

	return g.Wait()
}
