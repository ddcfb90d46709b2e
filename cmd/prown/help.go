package prown

import (
	"embed"
	"io/fs"

	"github.com/arthur-debert/prown/pkg/cobrax/topics"
	"github.com/arthur-debert/prown/pkg/logging"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicsFS embed.FS

// installTopics adds `prown help <topic>` for the embedded help topics
func installTopics(root *cobra.Command) {
	logger := logging.GetLogger("cmd")

	sub, err := fs.Sub(topicsFS, "topics")
	if err != nil {
		logger.Warn().Err(err).Msg("Help topics unavailable")
		return
	}
	m, err := topics.New(sub, topics.Options{})
	if err != nil {
		logger.Warn().Err(err).Msg("Help topics unavailable")
		return
	}
	m.Install(root)
}
