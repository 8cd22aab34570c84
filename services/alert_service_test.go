package services

import (
	"testing"
	"time"

	"pnodewatch/models"
)

func anomalyBatch(nodeID, typ, severity string) map[string][]models.Anomaly {
	return map[string][]models.Anomaly{
		nodeID: {{
			NodeID:    nodeID,
			Type:      typ,
			Severity:  severity,
			Message:   "test anomaly",
			Timestamp: time.Now(),
		}},
	}
}

func newTestAlertService() *AlertService {
	// No Mongo, no Discord, no webhook: pure in-memory lifecycle.
	return NewAlertService(nil, nil, "", time.Hour)
}

func TestAlertServiceCreatesAlertFromAnomaly(t *testing.T) {
	as := newTestAlertService()

	as.ProcessAnomalies(anomalyBatch("node-1", models.AnomalyOffline, models.SeverityCritical))

	alerts := as.ListAlerts("")
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if alerts[0].State != models.AlertStateActive {
		t.Errorf("state: got %s, want active", alerts[0].State)
	}
	if alerts[0].NodeID != "node-1" || alerts[0].Type != models.AnomalyOffline {
		t.Errorf("alert identity wrong: %+v", alerts[0])
	}
}

func TestAlertServiceDedupWithinWindow(t *testing.T) {
	as := newTestAlertService()

	as.ProcessAnomalies(anomalyBatch("node-1", models.AnomalyOffline, models.SeverityCritical))
	first := as.ListAlerts("")[0]

	as.ProcessAnomalies(anomalyBatch("node-1", models.AnomalyOffline, models.SeverityCritical))

	alerts := as.ListAlerts("")
	if len(alerts) != 1 {
		t.Fatalf("dedup failed: got %d alerts, want 1", len(alerts))
	}
	if alerts[0].ID != first.ID {
		t.Errorf("re-detection replaced alert instead of refreshing it")
	}
}

func TestAlertServiceSeparateTypesAndNodes(t *testing.T) {
	as := newTestAlertService()

	as.ProcessAnomalies(anomalyBatch("node-1", models.AnomalyOffline, models.SeverityCritical))
	as.ProcessAnomalies(anomalyBatch("node-1", models.AnomalyLatencySpike, models.SeverityMedium))
	as.ProcessAnomalies(anomalyBatch("node-2", models.AnomalyOffline, models.SeverityCritical))

	if got := len(as.ListAlerts("")); got != 3 {
		t.Errorf("got %d alerts, want 3", got)
	}
}

func TestAlertServiceLifecycle(t *testing.T) {
	as := newTestAlertService()

	as.ProcessAnomalies(anomalyBatch("node-1", models.AnomalyOffline, models.SeverityCritical))
	alert := as.ListAlerts("")[0]

	if err := as.Acknowledge(alert.ID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	got, _ := as.GetAlert(alert.ID)
	if got.State != models.AlertStateAcknowledged {
		t.Errorf("state: got %s, want acknowledged", got.State)
	}

	if err := as.Resolve(alert.ID); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, _ = as.GetAlert(alert.ID)
	if got.State != models.AlertStateResolved {
		t.Errorf("state: got %s, want resolved", got.State)
	}

	// Resolved alerts reject further transitions
	if err := as.Acknowledge(alert.ID); err == nil {
		t.Error("acknowledge after resolve should fail")
	}
}

func TestAlertServiceReopensAfterResolve(t *testing.T) {
	as := newTestAlertService()

	as.ProcessAnomalies(anomalyBatch("node-1", models.AnomalyOffline, models.SeverityCritical))
	first := as.ListAlerts("")[0]
	if err := as.Resolve(first.ID); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// Same node+type detected again: a fresh active alert replaces the
	// resolved one.
	as.ProcessAnomalies(anomalyBatch("node-1", models.AnomalyOffline, models.SeverityCritical))

	active := as.ListAlerts(models.AlertStateActive)
	if len(active) != 1 {
		t.Fatalf("got %d active alerts, want 1", len(active))
	}
	if active[0].ID == first.ID {
		t.Error("expected a new alert ID after resolve")
	}
}

func TestAlertServiceStateFilter(t *testing.T) {
	as := newTestAlertService()

	as.ProcessAnomalies(anomalyBatch("node-1", models.AnomalyOffline, models.SeverityCritical))
	as.ProcessAnomalies(anomalyBatch("node-2", models.AnomalyOffline, models.SeverityCritical))

	alert := as.ListAlerts("")[0]
	if err := as.Acknowledge(alert.ID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	if got := len(as.ListAlerts(models.AlertStateAcknowledged)); got != 1 {
		t.Errorf("acknowledged filter: got %d, want 1", got)
	}
	if got := len(as.ListAlerts(models.AlertStateActive)); got != 1 {
		t.Errorf("active filter: got %d, want 1", got)
	}
}

func TestAlertServiceUnknownAlert(t *testing.T) {
	as := newTestAlertService()

	if _, found := as.GetAlert("nope"); found {
		t.Error("unknown alert should not be found")
	}
	if err := as.Resolve("nope"); err == nil {
		t.Error("resolving unknown alert should fail")
	}
}

func TestAlertServiceHistoryEmptyWithoutActions(t *testing.T) {
	as := newTestAlertService()

	as.ProcessAnomalies(anomalyBatch("node-1", models.AnomalyOffline, models.SeverityCritical))

	// No webhook and no Discord configured: nothing fired, no history.
	if got := len(as.GetHistory(10)); got != 0 {
		t.Errorf("got %d history entries, want 0", got)
	}
}
