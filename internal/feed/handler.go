package feed

import (
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/enumerator"
	"main/internal/model/enum"
	"main/internal/provider"
	"main/internal/subscription"
	"main/pkg/exception"
)

// handlerSource adapts the external data queue handler to per-config pull
// streams, attaching the derived split/dividend streams for equities.
type handlerSource struct {
	handler  provider.DataQueueHandler
	universe provider.UniverseProvider
}

func newHandlerSource(handler provider.DataQueueHandler) *handlerSource {
	src := &handlerSource{handler: handler}
	if up, ok := handler.(provider.UniverseProvider); ok {
		src.universe = up
	}
	return src
}

// deriveAuxConfigs builds the Dividend and Split configurations implied by
// a primary equity configuration.
func deriveAuxConfigs(cfg subscription.Config) []subscription.Config {
	dividend := cfg
	dividend.DataKind = enum.DataKindDividend
	dividend.FillForward = false

	split := cfg
	split.DataKind = enum.DataKindSplit
	split.FillForward = false

	return []subscription.Config{dividend, split}
}

func (s *handlerSource) needsAux(cfg subscription.Config) bool {
	return cfg.SecurityType.HasCorporateActions() && !cfg.IsInternalFeed
}

// subscribe opens the live stream for cfg. Equity non-internal feeds merge
// the auxiliary corporate-action streams so splits land before the bar
// they apply to.
func (s *handlerSource) subscribe(cfg subscription.Config, notifier func()) (enumerator.Enumerator, error) {
	main, err := s.handler.Subscribe(cfg, notifier)
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe %s", cfg.Symbol)
	}
	if !s.needsAux(cfg) {
		return main, nil
	}

	auxConfigs := deriveAuxConfigs(cfg)
	auxes := make([]enumerator.Enumerator, 0, len(auxConfigs))
	for _, auxCfg := range auxConfigs {
		aux, err := s.handler.Subscribe(auxCfg, notifier)
		if err != nil {
			for _, opened := range auxes {
				_ = opened.Close()
			}
			_ = main.Close()
			s.unsubscribeOpened(cfg, auxConfigs[:len(auxes)])
			return nil, errors.Wrapf(err, "subscribe aux %s %s", auxCfg.Symbol, auxCfg.DataKind)
		}
		auxes = append(auxes, aux)
	}
	return enumerator.NewAuxSync(main, auxes...), nil
}

func (s *handlerSource) unsubscribeOpened(cfg subscription.Config, auxConfigs []subscription.Config) {
	if err := s.handler.Unsubscribe(cfg); err != nil {
		logs.Warnf("unsubscribe %s, err: %+v", cfg.Symbol, err)
	}
	for _, auxCfg := range auxConfigs {
		if err := s.handler.Unsubscribe(auxCfg); err != nil {
			logs.Warnf("unsubscribe aux %s, err: %+v", auxCfg.Symbol, err)
		}
	}
}

// unsubscribe tears down the primary stream and, for equity non-internal
// feeds, the derived aux streams.
func (s *handlerSource) unsubscribe(cfg subscription.Config) error {
	err := s.handler.Unsubscribe(cfg)
	if s.needsAux(cfg) {
		for _, auxCfg := range deriveAuxConfigs(cfg) {
			if auxErr := s.handler.Unsubscribe(auxCfg); auxErr != nil && err == nil {
				err = auxErr
			}
		}
	}
	return err
}

// universeFor returns the handler's universe capability or fails when the
// security type cannot be selected.
func (s *handlerSource) universeFor(securityType enum.SecurityType) (provider.UniverseProvider, error) {
	if s.universe == nil || !s.universe.CanPerformSelection(securityType) {
		return nil, errors.Wrapf(exception.ErrUnsupportedSecurityType, "security type %s", securityType)
	}
	return s.universe, nil
}
