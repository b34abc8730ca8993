package resolve

import (
	"github.com/poiesic/faqbot/cascade"
	"github.com/poiesic/faqbot/core"
)

// Monitor receives callbacks at each stage of a resolution.
type Monitor interface {
	cascade.Monitor
	Start(query string)
	IntentMatched(result core.Result)
	IntentMissed()
	IntentUnavailable(err error)
	Finish(result core.Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                                   {}
func (n *noopMonitor) IntentMatched(_ core.Result)                                      {}
func (n *noopMonitor) IntentMissed()                                                    {}
func (n *noopMonitor) IntentUnavailable(_ error)                                        {}
func (n *noopMonitor) DocumentScanned(_ core.DocumentDescriptor, _ cascade.ScanOutcome) {}
func (n *noopMonitor) SecondaryStarted(_ string, _ int)                                 {}
func (n *noopMonitor) Finish(_ core.Result)                                             {}
