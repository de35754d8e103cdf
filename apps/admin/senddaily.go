package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/kazi/core/org"
	"github.com/trezcool/kazi/core/report"
	"github.com/trezcool/kazi/core/user"
)

// sendDaily emails yesterday's daily report to every active user of every
// active organisation. Meant to run from a scheduler shortly after midnight.
func (cli *commandLine) sendDaily() error {
	ctx := context.Background()
	period := report.NewDayPeriod(time.Now().UTC().Add(-24 * time.Hour))

	active := true
	orgs, err := cli.orgRepo.FilterOrganisations(ctx, org.QueryFilter{IsActive: &active})
	if err != nil {
		return err
	}

	var sent, failed int
	for _, o := range orgs {
		users, err := cli.usrRepo.FilterUsers(ctx, user.QueryFilter{OrgID: o.ID, IsActive: &active})
		if err != nil {
			return err
		}
		for _, usr := range users {
			if err := cli.reportSvc.SendUserDaily(ctx, o.ID, usr.ID, period); err != nil {
				logger.Printf("sending daily report to %q: %v", usr.Email, err)
				failed++
				continue
			}
			sent++
		}
	}
	fmt.Printf("daily reports sent: %d, failed: %d\n", sent, failed)
	return nil
}
