package feed

import (
	"time"

	"github.com/yanun0323/logs"

	"main/internal/enumerator"
	"main/internal/model"
	"main/internal/provider"
	"main/internal/subscription"
	"main/pkg/exception"
)

// warmupPlanner splices a bounded historical replay in front of a live
// stream: file-based warmup first (unclamped), then the history provider
// (clamped to the look-back window), then the live tail.
type warmupPlanner struct {
	lookBackDays      int
	dataProvider      provider.DataProvider
	historicalFactory provider.HistoricalFeedFactory
}

// plan returns live unchanged when no warmup applies. Either warmup branch
// failing is logged and skipped; the remaining branches still run.
func (w *warmupPlanner) plan(req subscription.Request, algo provider.Algorithm, nowUTC time.Time, live enumerator.Enumerator) enumerator.Enumerator {
	if algo == nil || !algo.IsWarmingUp() {
		return live
	}
	if req.Exchange == nil || !req.Exchange.HasTradableDateBetween(req.StartUTC, nowUTC) {
		return live
	}

	rejectFuture := func(p *model.DataPoint) bool {
		return !p.EndTimeUTC().After(nowUTC)
	}

	var stages []enumerator.Enumerator
	if w.historicalFactory != nil {
		fileReq := req
		fileReq.EndUTC = nowUTC
		fileEnum, err := w.historicalFactory.CreateEnumerator(fileReq, w.dataProvider)
		if err != nil {
			logs.Warnf("%s, file branch skipped for %s, err: %+v", exception.ErrWarmupSource, req.Config.Symbol, err)
		} else {
			stages = append(stages, enumerator.NewFilter(fileEnum, func(p *model.DataPoint) bool {
				return !p.IsFillForward && rejectFuture(p)
			}))
		}
	}

	if history := algo.HistoryProvider(); history != nil {
		start := req.StartUTC
		if clamp := nowUTC.AddDate(0, 0, -w.lookBackDays); start.Before(clamp) {
			start = clamp
		}
		if start.Before(nowUTC) {
			historyEnum, err := history.GetHistory([]provider.HistoryRequest{{
				Config:   req.Config,
				StartUTC: start,
				EndUTC:   nowUTC,
			}}, algo.TimeZone())
			if err != nil {
				logs.Warnf("%s, history branch skipped for %s, err: %+v", exception.ErrWarmupSource, req.Config.Symbol, err)
			} else {
				stages = append(stages, enumerator.NewFilter(historyEnum, rejectFuture))
			}
		}
	}

	if len(stages) == 0 {
		return live
	}
	stages = append(stages, live)
	return enumerator.NewConcat(stages...)
}
