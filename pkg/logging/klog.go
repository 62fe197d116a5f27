// Package logging adapts the klog structured logger used elsewhere in the
// GoLite lineage (pkg/adapters/lockfree/memtable.go's klog.V(4).Infof idiom)
// to the utils.Logger seam the storage engine and tree facade expect.
package logging

import (
	"k8s.io/klog/v2"

	"github.com/sukryu/godegreetree/pkg/utils"
)

// KlogLogger implements utils.Logger on top of klog, so engine tracing
// participates in whatever klog verbosity/output the host process has
// configured instead of going straight to stdout.
type KlogLogger struct{}

func NewKlogLogger() *KlogLogger { return &KlogLogger{} }

var _ utils.Logger = (*KlogLogger)(nil)

func (l *KlogLogger) Debug(msg string) { klog.V(4).Infof("%s", msg) }
func (l *KlogLogger) Info(msg string)  { klog.InfoDepth(1, msg) }
func (l *KlogLogger) Warn(msg string)  { klog.WarningDepth(1, msg) }
func (l *KlogLogger) Error(msg string) { klog.ErrorDepth(1, msg) }
