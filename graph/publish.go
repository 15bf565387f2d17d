package graph

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mean-machine-gc/ubispec/validate"
)

// Subjects for downstream consumers (documentation site, dashboards).
const (
	ReportSubjectPrefix   = "ubispec.report"
	ArtifactSubjectPrefix = "ubispec.artifact"
)

// Publisher pushes validation reports and derived artifacts onto NATS.
// A nil connection degrades to a no-op so local runs need no broker.
type Publisher struct {
	nc *nats.Conn
}

// NewPublisher wraps an established connection. nc may be nil.
func NewPublisher(nc *nats.Conn) *Publisher {
	return &Publisher{nc: nc}
}

// artifactEnvelope is the wire format shared by every published
// artifact.
type artifactEnvelope struct {
	Kind        string    `json:"kind"`
	RunID       string    `json:"run_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Payload     any       `json:"payload"`
}

// PublishReport publishes an aggregated validation report to
// ubispec.report.<run-id>.
func (p *Publisher) PublishReport(report *validate.Report) error {
	if p == nil || p.nc == nil {
		return nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	subject := fmt.Sprintf("%s.%s", ReportSubjectPrefix, report.RunID)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}

// PublishArtifact publishes one derived artifact to
// ubispec.artifact.<kind>. Kind names the artifact family: topology,
// tables, scenarios, checklist, trace, manifest, catalog.
func (p *Publisher) PublishArtifact(kind, runID string, payload any) error {
	if p == nil || p.nc == nil {
		return nil
	}
	data, err := json.Marshal(artifactEnvelope{
		Kind:        kind,
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Payload:     payload,
	})
	if err != nil {
		return fmt.Errorf("marshal %s artifact: %w", kind, err)
	}
	subject := fmt.Sprintf("%s.%s", ArtifactSubjectPrefix, kind)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s artifact: %w", kind, err)
	}
	return nil
}

// PublishTopology publishes the topology graph.
func (p *Publisher) PublishTopology(runID string, g *Graph) error {
	return p.PublishArtifact("topology", runID, g)
}

// Flush drains pending publishes before shutdown.
func (p *Publisher) Flush() error {
	if p == nil || p.nc == nil {
		return nil
	}
	return p.nc.Flush()
}
