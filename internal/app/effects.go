package app

import (
	"context"
	"errors"

	"github.com/justestif/moodmuse/internal/activity"
	"github.com/justestif/moodmuse/internal/feed"
	"github.com/justestif/moodmuse/internal/gateway"
	"github.com/justestif/moodmuse/internal/logging"
	"github.com/justestif/moodmuse/internal/model"
	"github.com/justestif/moodmuse/internal/mood"
)

// effectResult carries an effect's outcome back to the loop.
type effectResult struct {
	fn func(*App)
}

func (r effectResult) apply(a *App) {
	a.inFlight--
	r.fn(a)
}

type snapshotRequest struct{ reply chan State }

type settleRequest struct{ reply chan State }

func (r snapshotRequest) replyChan() chan State { return r.reply }
func (r settleRequest) replyChan() chan State   { return r.reply }

func (r snapshotRequest) apply(a *App) {
	r.reply <- a.state()
}

func (r settleRequest) apply(a *App) {
	a.waiters = append(a.waiters, r.reply)
}

// fetchPage sends one feed request.
func (a *App) fetchPage(req feed.Request) {
	userID := a.sess.Current().UserID

	a.spawn(gateway.OpRecommend, func(ctx context.Context) func(*App) {
		items, err := a.gw.Recommend(ctx, gateway.RecommendRequest{
			Mood:        req.Query.Mood,
			Text:        req.Query.Text,
			ContentType: req.Query.ContentType,
			Language:    req.Query.Language,
			Page:        req.Query.Page,
			Limit:       req.PageSize,
			UserID:      userID,
		})
		if err == nil && a.enricher != nil && req.Query.ContentType == model.Songs {
			var itemErrs []error
			items, itemErrs = enrich(ctx, a.enricher, items)
			for _, e := range itemErrs {
				logging.Ctx(ctx).Warn().Err(e).Msg("enriching song")
			}
		}

		res := feed.Result{Epoch: req.Epoch, Page: req.Query.Page, Items: items, Err: err}
		return func(a *App) {
			if !a.feed.Apply(res) {
				return
			}
			if res.Err != nil {
				a.notify(Error, recommendMessage(res.Err))
				return
			}
			a.regroup()
		}
	})
}

func enrich(ctx context.Context, e Enricher, items []model.Item) ([]model.Item, []error) {
	out, itemErrs := e.Enrich(ctx, items)
	errs := make([]error, len(itemErrs))
	for i, ie := range itemErrs {
		errs[i] = ie
	}
	return out, errs
}

// recommendMessage is the notification for a failed page fetch.
func recommendMessage(err error) string {
	if gateway.IsNetwork(err) || errors.Is(err, context.DeadlineExceeded) {
		return MsgRecommendNetwork
	}
	if msg, ok := gateway.ServerMessage(err); ok {
		return msg
	}
	return gateway.GenericMessage(gateway.OpRecommend)
}

// regroup recomputes vibe groups of song results.
func (a *App) regroup() {
	if a.groups < 1 || a.feed.Query().ContentType != model.Songs {
		a.grouped, a.ungrouped = nil, nil
		return
	}
	a.grouped, a.ungrouped = mood.GroupByVibe(a.feed.Items(), a.groups)
}

// refreshActivity reloads the activity window of the signed-in user.
func (a *App) refreshActivity() {
	req, ok := a.log.Refresh(a.sess.Current().UserID)
	if !ok {
		return
	}

	a.spawn(gateway.OpRecentActivity, func(ctx context.Context) func(*App) {
		acts, err := a.gw.RecentActivity(ctx, req.UserID, req.Limit)
		return func(a *App) {
			a.log.ApplyRefresh(activity.RefreshResult{Generation: req.Generation, Activities: acts, Err: err})
		}
	})
}

// recordActivity stores an optimistic record. Failures are logged by the
// activity log and never surfaced.
func (a *App) recordActivity(req activity.RecordRequest) {
	a.spawn(gateway.OpLogActivity, func(ctx context.Context) func(*App) {
		act, err := a.gw.LogActivity(ctx, req.UserID, req.Action, req.Mood)
		return func(a *App) {
			a.log.ApplyRecord(activity.RecordResult{LocalID: req.LocalID, UserID: req.UserID, Activity: act, Err: err})
		}
	})
}
