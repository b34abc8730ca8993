package cascade

import "github.com/poiesic/faqbot/core"

// ScanOutcome classifies one Phase A document scan.
type ScanOutcome int

const (
	// ScanSkipped means the document content was unavailable.
	ScanSkipped ScanOutcome = iota
	// ScanNotConfident means the reply was blank or contained the sentinel.
	ScanNotConfident
	// ScanConfident means the reply was accepted as the answer.
	ScanConfident
	// ScanFailed means the primary provider returned an error.
	ScanFailed
)

func (o ScanOutcome) String() string {
	switch o {
	case ScanSkipped:
		return "skipped"
	case ScanNotConfident:
		return "not_confident"
	case ScanConfident:
		return "confident"
	case ScanFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Monitor receives callbacks as the cascade progresses.
type Monitor interface {
	DocumentScanned(doc core.DocumentDescriptor, outcome ScanOutcome)
	SecondaryStarted(reason string, documents int)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) DocumentScanned(_ core.DocumentDescriptor, _ ScanOutcome) {}
func (n *noopMonitor) SecondaryStarted(_ string, _ int)                          {}
