package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/checkin"
	"github.com/trezcool/kazi/core/claim"
	"github.com/trezcool/kazi/core/journal"
	"github.com/trezcool/kazi/core/lead"
	"github.com/trezcool/kazi/core/org"
	"github.com/trezcool/kazi/core/user"
)

type (
	ServiceInterface interface {
		MapData(ctx context.Context, orgID int, branchID null.Int, period Period) (MapDataReport, error)
		OrgActivity(ctx context.Context, orgID int, period Period) (OrgActivityReport, error)
		UserDaily(ctx context.Context, orgID, userID int, period Period) (UserDailyReport, error)
		SendUserDaily(ctx context.Context, orgID, userID int, period Period) error
	}

	// Service aggregates the domain repositories into map/activity/daily
	// reports, caching generated reports in the TTL cache.
	Service struct {
		orgRepo      org.Repository
		userRepo     user.Repository
		checkinRepo  checkin.Repository
		claimRepo    claim.Repository
		journalRepo  journal.Repository
		leadRepo     lead.Repository
		geocoder     core.Geocoder
		cache        core.Cache
		mailSvc      core.EmailService
		logger       core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	orgRepo org.Repository,
	userRepo user.Repository,
	checkinRepo checkin.Repository,
	claimRepo claim.Repository,
	journalRepo journal.Repository,
	leadRepo lead.Repository,
	geocoder core.Geocoder,
	cache core.Cache,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		orgRepo:     orgRepo,
		userRepo:    userRepo,
		checkinRepo: checkinRepo,
		claimRepo:   claimRepo,
		journalRepo: journalRepo,
		leadRepo:    leadRepo,
		geocoder:    geocoder,
		cache:       cache,
		mailSvc:     mailSvc,
		logger:      logger,
	}
}

func mapDataKey(orgID int, branchID null.Int, period Period) string {
	return fmt.Sprintf("report:mapdata:%d:%d:%s", orgID, branchID.Int, period.CacheKey())
}

func orgActivityKey(orgID int, period Period) string {
	return fmt.Sprintf("report:activity:%d:%s", orgID, period.CacheKey())
}

// cachedGet loads a cached report into dst; a cache outage is only logged.
func (svc *Service) cachedGet(ctx context.Context, key string, dst interface{}) bool {
	if svc.cache == nil {
		return false
	}
	data, err := svc.cache.Get(ctx, key)
	if err != nil {
		if err != core.ErrCacheMiss {
			svc.logger.Warn("report cache get", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		svc.logger.Warn("report cache decode", err)
		return false
	}
	return true
}

func (svc *Service) cachedSet(ctx context.Context, key string, src interface{}, ttlKey string) {
	if svc.cache == nil {
		return
	}
	data, err := json.Marshal(src)
	if err != nil {
		svc.logger.Warn("report cache encode", err)
		return
	}
	ttl := core.Conf.Reports.MapDataCacheTTL
	if ttlKey == "activity" {
		ttl = core.Conf.Reports.OrgActivityCacheTTL
	}
	if err := svc.cache.Set(ctx, key, data, ttl); err != nil {
		svc.logger.Warn("report cache set", err)
	}
}
