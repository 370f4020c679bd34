package sources

import (
	"github.com/okian/jobscout/internal/config"
)

// Names lists every provider in fan-out order.
var Names = []string{
	AdzunaName,
	JSearchName,
	JoobleName,
	USAJobsName,
	RemotiveName,
	ArbeitnowName,
	TheMuseName,
}

// NewRegistry builds one client per provider that cfg does not disable.
// Providers missing credentials are still returned and report not_configured
// at call time, so the response names them. The timeout and retry settings
// of cfg are applied before opts.
func NewRegistry(cfg *config.Config, opts ...Option) []Client {
	common := append([]Option{
		WithTimeout(cfg.SourceTimeout()),
		WithRetry(cfg.MaxAttempts, cfg.RetryBaseDelay()),
	}, opts...)

	all := []Client{
		NewAdzuna(cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.AdzunaCountry, common...),
		NewJSearch(cfg.RapidAPIKey, common...),
		NewJooble(cfg.JoobleAPIKey, common...),
		NewUSAJobs(cfg.USAJobsAPIKey, cfg.USAJobsEmail, common...),
		NewRemotive(common...),
		NewArbeitnow(common...),
		NewTheMuse(cfg.TheMuseAPIKey, common...),
	}

	clients := make([]Client, 0, len(all))
	for _, c := range all {
		if cfg.Disabled(c.Name()) {
			continue
		}
		clients = append(clients, c)
	}
	return clients
}
