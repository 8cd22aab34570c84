package services

import (
	"context"
	"log"
	"net"
	"sync"
	"time"

	"pnodewatch/analytics"
	"pnodewatch/config"
	"pnodewatch/models"
	"pnodewatch/utils"
)

// Poller drives the evaluation pipeline: fetch pods from the pRPC
// bridge, map and enrich them into NodeRecords, run one analytics cycle,
// publish the results to the cache, and hand ingestion anomalies to the
// alert service.
type Poller struct {
	cfg       *config.Config
	prpc      *PRPCClient
	geo       *utils.GeoResolver
	engine    *analytics.Engine
	threshold *analytics.ThresholdDetector
	cache     *CacheService
	alerts    *AlertService

	// previous cycle's records, for current-vs-previous checks
	previous map[string]*models.NodeRecord
	prevMu   sync.Mutex

	stopChan chan struct{}
}

func NewPoller(cfg *config.Config, prpc *PRPCClient, geo *utils.GeoResolver, engine *analytics.Engine, threshold *analytics.ThresholdDetector, cache *CacheService, alerts *AlertService) *Poller {
	return &Poller{
		cfg:       cfg,
		prpc:      prpc,
		geo:       geo,
		engine:    engine,
		threshold: threshold,
		cache:     cache,
		alerts:    alerts,
		previous:  make(map[string]*models.NodeRecord),
		stopChan:  make(chan struct{}),
	}
}

func (p *Poller) Start() {
	log.Printf("Starting poller (interval %s)...", p.cfg.PollIntervalDuration())

	ticker := time.NewTicker(p.cfg.PollIntervalDuration())

	go func() {
		// Immediate first cycle so the cache is warm before the first tick
		p.runCycle()

		for {
			select {
			case <-ticker.C:
				p.runCycle()
			case <-p.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

func (p *Poller) Stop() {
	close(p.stopChan)
}

func (p *Poller) runCycle() {
	pods, err := p.prpc.GetPods()
	if err != nil {
		log.Printf("Poll cycle failed: %v", err)
		return
	}

	nodes := make([]*models.NodeRecord, 0, len(pods.Pods))
	for i := range pods.Pods {
		nodes = append(nodes, p.buildRecord(&pods.Pods[i]))
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.PollIntervalDuration())
	defer cancel()

	result := p.engine.EvaluateCycle(ctx, nodes)
	p.cache.PublishCycle(nodes, result)

	ingestion := p.runThresholdChecks(nodes)
	if p.alerts != nil {
		p.alerts.ProcessAnomalies(ingestion)
	}

	log.Printf("Evaluated %d nodes: %d online, %d with anomalies",
		result.Stats.TotalNodes, result.Stats.OnlineNodes, len(result.Anomalies))
}

// runThresholdChecks runs the ingestion-side detector against the
// previous cycle's records, then rotates the previous map.
func (p *Poller) runThresholdChecks(nodes []*models.NodeRecord) map[string][]models.Anomaly {
	p.prevMu.Lock()
	defer p.prevMu.Unlock()

	out := make(map[string][]models.Anomaly)
	current := make(map[string]*models.NodeRecord, len(nodes))

	for _, node := range nodes {
		anomalies := p.threshold.Detect(node, analytics.DetectionContext{Previous: p.previous[node.ID]})
		if len(anomalies) > 0 {
			out[node.ID] = anomalies
		}
		current[node.ID] = node
	}

	p.previous = current
	return out
}

func (p *Poller) buildRecord(pod *models.Pod) *models.NodeRecord {
	node := &models.NodeRecord{
		ID:              pod.Pubkey,
		Pubkey:          pod.Pubkey,
		IP:              hostOf(pod.Address),
		Status:          normalizeStatus(pod.Status, pod.LastSeenTimestamp),
		PeerCount:       pod.PeerCount,
		LastSeen:        time.Unix(pod.LastSeenTimestamp, 0),
		Latency:         pod.LatencyMs,
		StorageUsed:     pod.StorageUsed,
		StorageCapacity: pod.StorageCommitted,
		Uptime:          pod.Uptime,
		SoftwareVersion: pod.Version,
		IsValidator:     pod.IsValidator,
	}

	// Self-reported location wins over IP-based lookup
	if pod.Country != "" {
		node.Location = &models.Location{Country: pod.Country, Region: pod.Region}
	} else if node.IP != "" {
		loc := p.geo.Lookup(node.IP)
		if loc.Country != "" {
			node.Location = &models.Location{
				Country: loc.Country,
				Region:  loc.Region,
				City:    loc.City,
				Lat:     loc.Lat,
				Lon:     loc.Lon,
			}
		}
	}

	if node.SoftwareVersion != "" {
		versions := &utils.VersionConfig{
			CurrentStable: p.cfg.Versions.CurrentStable,
			MinSupported:  p.cfg.Versions.MinSupported,
			Deprecated:    p.cfg.Versions.Deprecated,
		}
		status, needsUpgrade, _ := utils.CheckVersionStatus(node.SoftwareVersion, versions)
		node.VersionStatus = status
		node.IsUpgradeNeeded = needsUpgrade
	}

	return node
}

func hostOf(address string) string {
	if address == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(address); err == nil {
		return host
	}
	return address
}

// normalizeStatus trusts a reported status and otherwise infers one from
// last-seen age.
func normalizeStatus(reported string, lastSeenUnix int64) string {
	switch reported {
	case models.StatusOnline, models.StatusOffline, models.StatusUnknown:
		return reported
	}

	if lastSeenUnix <= 0 {
		return models.StatusUnknown
	}

	age := time.Since(time.Unix(lastSeenUnix, 0))
	switch {
	case age < 5*time.Minute:
		return models.StatusOnline
	case age > time.Hour:
		return models.StatusOffline
	default:
		return models.StatusUnknown
	}
}
