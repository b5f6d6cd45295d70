package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zzenonn/weatherpipe/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultListMaxItems caps every listing call.
const DefaultListMaxItems = 10000

// ObjectLister lists objects under a prefix of any bucket.
type ObjectLister interface {
	ListObjects(ctx context.Context, bucket, prefix string, maxItems int) ([]domain.ObjectRecord, error)
}

// ProbeOutcome is the result of listing one partition candidate.
type ProbeOutcome int

const (
	ProbeFound ProbeOutcome = iota
	ProbeNotFound
	// ProbeFailed is reported to observers but aggregated like ProbeNotFound.
	ProbeFailed
)

func (o ProbeOutcome) String() string {
	switch o {
	case ProbeFound:
		return "found"
	case ProbeNotFound:
		return "not-found"
	default:
		return "failed"
	}
}

// ProbeResult - outcome of a single partition probe
type ProbeResult struct {
	Candidate domain.PartitionCandidate
	Outcome   ProbeOutcome
	Objects   []domain.ObjectRecord
	Err       error
}

// PartitionCandidates returns the probe prefixes for every month of the
// previous and current year of now, both layouts per month.
func PartitionCandidates(prefix string, now time.Time) []domain.PartitionCandidate {
	currentYear := now.Year()
	candidates := make([]domain.PartitionCandidate, 0, 48)

	for year := currentYear - 1; year <= currentYear; year++ {
		for month := 1; month <= 12; month++ {
			token := fmt.Sprintf("%d_%02d", year, month)
			candidates = append(candidates,
				domain.PartitionCandidate{
					Token:  token,
					Layout: domain.LayoutKeyValue,
					Prefix: fmt.Sprintf("%s%s=%s/", prefix, domain.PartitionColumn, token),
				},
				domain.PartitionCandidate{
					Token:  token,
					Layout: domain.LayoutBare,
					Prefix: fmt.Sprintf("%s%s/", prefix, token),
				},
			)
		}
	}

	return candidates
}

// PartitionDiscoverer probes a table prefix and its likely partition prefixes.
type PartitionDiscoverer struct {
	lister      ObjectLister
	maxItems    int
	concurrency int

	mu       sync.Mutex
	observer func(ProbeResult)
}

// NewPartitionDiscoverer creates a sequential discoverer with the default listing cap.
func NewPartitionDiscoverer(lister ObjectLister) *PartitionDiscoverer {
	return &PartitionDiscoverer{
		lister:      lister,
		maxItems:    DefaultListMaxItems,
		concurrency: 1,
	}
}

// Discover lists the root prefix and every partition candidate. Listing
// failures never abort discovery; objects are returned in probe order and are
// not de-duplicated.
func (d *PartitionDiscoverer) Discover(ctx context.Context, bucket, prefix string, now time.Time) []domain.ObjectRecord {
	var objects []domain.ObjectRecord

	rootObjects, err := d.lister.ListObjects(ctx, bucket, prefix, d.maxItems)
	if err != nil {
		log.Warnf("Error listing objects at root prefix: %v", err)
	} else if len(rootObjects) > 0 {
		log.Infof("Found %d objects at the root prefix", len(rootObjects))
		objects = append(objects, rootObjects...)
	}

	for _, result := range d.probeAll(ctx, bucket, PartitionCandidates(prefix, now)) {
		if result.Outcome == ProbeFound {
			objects = append(objects, result.Objects...)
		}
	}

	return objects
}

// probeAll runs every probe with at most d.concurrency in flight. Results keep
// the order of candidates.
func (d *PartitionDiscoverer) probeAll(ctx context.Context, bucket string, candidates []domain.PartitionCandidate) []ProbeResult {
	results := make([]ProbeResult, len(candidates))

	g := new(errgroup.Group)
	g.SetLimit(d.concurrency)
	for i, candidate := range candidates {
		g.Go(func() error {
			results[i] = d.probe(ctx, bucket, candidate)
			d.notify(results[i])
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// probe lists one candidate. A panicking lister marks the probe failed since
// it runs off the caller's goroutine.
func (d *PartitionDiscoverer) probe(ctx context.Context, bucket string, candidate domain.PartitionCandidate) (result ProbeResult) {
	result = ProbeResult{Candidate: candidate}
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("Listing partition prefix %s panicked: %v", candidate.Prefix, r)
			result = ProbeResult{
				Candidate: candidate,
				Outcome:   ProbeFailed,
				Err:       fmt.Errorf("listing %s panicked: %v", candidate.Prefix, r),
			}
		}
	}()

	objects, err := d.lister.ListObjects(ctx, bucket, candidate.Prefix, d.maxItems)
	switch {
	case err != nil:
		log.Debugf("No objects found in partition prefix %s: %v", candidate.Prefix, err)
		result.Outcome = ProbeFailed
		result.Err = err
	case len(objects) == 0:
		log.Debugf("No objects found in partition prefix %s", candidate.Prefix)
		result.Outcome = ProbeNotFound
	default:
		log.Infof("Found %d objects in partition prefix %s", len(objects), candidate.Prefix)
		result.Outcome = ProbeFound
		result.Objects = objects
	}

	return result
}

func (d *PartitionDiscoverer) notify(result ProbeResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.observer != nil {
		d.observer(result)
	}
}

// Aggregate sums sizes and counts objects, returning the latest modification
// time rendered with domain.TimestampLayout, or nil when no object has one.
func Aggregate(objects []domain.ObjectRecord) (domain.MetadataSummary, *string) {
	var summary domain.MetadataSummary
	var latest *time.Time

	for i := range objects {
		summary.ObjectsCount++
		summary.TotalSizeBytes += objects[i].Size
		if ts := objects[i].LastModified; ts != nil && (latest == nil || ts.After(*latest)) {
			latest = ts
		}
	}

	if latest == nil {
		return summary, nil
	}
	formatted := latest.Format(domain.TimestampLayout)
	return summary, &formatted
}
