package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/org"
)

// addOrg creates a new org.Organisation; slugs are unique across the system.
func (cli *commandLine) addOrg(name, slug, timezone string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	slug = core.CleanString(slug, true /* lower */)

	if err := cli.orgRepo.CheckSlugUniqueness(ctx, slug); err != nil {
		return err
	}

	now := time.Now().UTC()
	o, err := cli.orgRepo.CreateOrganisation(ctx, org.Organisation{
		Name:      name,
		Slug:      slug,
		Timezone:  timezone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}
	fmt.Printf("organisation %q created (id=%d)\n", o.Slug, o.ID)
	return nil
}
