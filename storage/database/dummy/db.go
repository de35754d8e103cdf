// Package dummydb provides in-memory Repository implementations for tests.
package dummydb

import (
	"sync"

	"github.com/trezcool/kazi/core/checkin"
	"github.com/trezcool/kazi/core/claim"
	"github.com/trezcool/kazi/core/competitor"
	"github.com/trezcool/kazi/core/journal"
	"github.com/trezcool/kazi/core/lead"
	"github.com/trezcool/kazi/core/org"
	"github.com/trezcool/kazi/core/user"
)

type (
	DB struct {
		org        *orgTable
		branch     *branchTable
		user       *userTable
		checkin    *checkinTable
		claim      *claimTable
		competitor *competitorTable
		journal    *journalTable
		lead       *leadTable
	}

	orgTable struct {
		sync.RWMutex
		table map[int]*org.Organisation
	}
	branchTable struct {
		sync.RWMutex
		table map[int]*org.Branch
	}
	userTable struct {
		sync.RWMutex
		table map[int]*user.User
	}
	checkinTable struct {
		sync.RWMutex
		table map[int]*checkin.CheckIn
	}
	claimTable struct {
		sync.RWMutex
		table map[int]*claim.Claim
	}
	competitorTable struct {
		sync.RWMutex
		table map[int]*competitor.Competitor
	}
	journalTable struct {
		sync.RWMutex
		table map[int]*journal.Journal
	}
	leadTable struct {
		sync.RWMutex
		table map[int]*lead.Lead
	}
)

func Open() (*DB, error) {
	db := &DB{
		org:        &orgTable{table: make(map[int]*org.Organisation)},
		branch:     &branchTable{table: make(map[int]*org.Branch)},
		user:       &userTable{table: make(map[int]*user.User)},
		checkin:    &checkinTable{table: make(map[int]*checkin.CheckIn)},
		claim:      &claimTable{table: make(map[int]*claim.Claim)},
		competitor: &competitorTable{table: make(map[int]*competitor.Competitor)},
		journal:    &journalTable{table: make(map[int]*journal.Journal)},
		lead:       &leadTable{table: make(map[int]*lead.Lead)},
	}
	return db, nil
}
