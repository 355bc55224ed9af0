package sync

import (
	"fmt"
	goSync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/sidkik/tagmirror/pkg/config"
	"github.com/sidkik/tagmirror/pkg/errors"
	"github.com/sidkik/tagmirror/pkg/model"
	"github.com/sidkik/tagmirror/pkg/tags"
)

// ErrSyncInProgress is returned when nodes are already being generated into
// the target folder.
var ErrSyncInProgress = errors.New("nodes are already being generated into the target folder")

// Generator starts tag generation jobs against a model.
type Generator struct {
	model *model.Model
	log   *logrus.Logger
	clock clockwork.Clock

	// running contains the IDs of the target folders that jobs are
	// currently generating into.
	running     map[uuid.UUID]struct{}
	runningLock goSync.Mutex
}

// NewGenerator returns a Generator for `m`. The tags are resolved in the tag
// tree set on the model.
func NewGenerator(m *model.Model, log *logrus.Logger) *Generator {
	return &Generator{
		model:   m,
		log:     log,
		clock:   clockwork.NewRealClock(),
		running: map[uuid.UUID]struct{}{},
	}
}

// Job is a handle to a generation running in the background.
type Job struct {
	done chan struct{}

	// The following fields are only safe to read after done is closed.
	err        error
	stats      Stats
	unresolved []UnresolvedLink
	startedAt  time.Time
	finishedAt time.Time
}

// Done returns a channel that's closed when the job finishes.
func (job *Job) Done() <-chan struct{} {
	return job.done
}

// Wait blocks until the job finishes, and returns the error that stopped
// it, if any.
func (job *Job) Wait() error {
	<-job.done
	return job.err
}

// Stats returns the changes the job made to the model. It blocks until the
// job finishes.
func (job *Job) Stats() Stats {
	<-job.done
	return job.stats
}

// Unresolved returns the dynamic links that didn't resolve after the
// generation. It blocks until the job finishes.
func (job *Job) Unresolved() []UnresolvedLink {
	<-job.done
	return job.unresolved
}

// Duration returns how long the job ran for. It blocks until the job
// finishes.
func (job *Job) Duration() time.Duration {
	<-job.done
	return job.finishedAt.Sub(job.startedAt)
}

// GenerateNodesIntoModel resolves the nodes referenced by `cfg`, and starts
// generating the model nodes in the background. If either node can't be
// resolved, no job is started.
func (g *Generator) GenerateNodesIntoModel(cfg config.Job) (*Job, error) {
	startingNode, err := g.getStartingNode(cfg.StartingNodeToFetch)
	if err != nil {
		g.log.WithError(err).Error("Cannot get StartingNodeToFetch")
		return nil, errors.WithContext(err, "get starting node")
	}

	targetFolder, err := g.getTargetFolder(cfg.TargetFolder)
	if err != nil {
		g.log.WithError(err).Error("Cannot get TargetFolder")
		return nil, errors.WithContext(err, "get target folder")
	}

	if !g.acquire(targetFolder.ID) {
		g.log.WithField("folder", targetFolder.Path()).Warn(
			"Nodes are already being generated into the target folder. " +
				"Wait for the running generation to finish, then try again.")
		return nil, ErrSyncInProgress
	}

	job := &Job{done: make(chan struct{})}
	go func() {
		defer close(job.done)
		defer g.release(targetFolder.ID)
		job.err = g.run(job, startingNode, targetFolder, cfg)
	}()
	return job, nil
}

func (g *Generator) getStartingNode(path string) (*tags.Node, error) {
	tree := g.model.Tags()
	if tree == nil {
		return nil, errors.New("no tags are loaded")
	}

	node, ok := tree.Get(path)
	if !ok {
		return nil, errors.NodeNotFound{Namespace: "tag", Path: path}
	}
	return node, nil
}

func (g *Generator) getTargetFolder(path string) (*model.Node, error) {
	node, ok := g.model.Get(path)
	if !ok {
		return nil, errors.NodeNotFound{Namespace: "model", Path: path}
	}

	if node.Kind != model.Folder {
		return nil, errors.New(fmt.Sprintf("%q is a %s, not a folder", path, node.Kind))
	}
	return node, nil
}

// run generates the nodes, and then checks the dynamic links in the target
// folder. Panics are recovered so that they only stop this job.
func (g *Generator) run(job *Job, startingNode *tags.Node, targetFolder *model.Node,
	cfg config.Job) (err error) {

	job.startedAt = g.clock.Now()
	defer func() {
		job.finishedAt = g.clock.Now()
	}()

	walker := NewWalker(g.model, g.log, cfg.Exclude...)
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(fmt.Sprintf("panic: %v", r))
			g.log.WithError(err).Error("Node generation crashed")
		}
		job.stats = walker.Stats()
	}()

	logger := g.log.WithFields(logrus.Fields{
		"tag":    startingNode.ID,
		"folder": targetFolder.Path(),
	})
	logger.Info("Generating nodes into model")

	if err := walker.GenerateNodes(startingNode, targetFolder, cfg.DeleteExistingTags); err != nil {
		logger.WithError(err).Error("Failed to generate nodes. " +
			"Nodes generated before the failure were kept.")
		return err
	}

	job.unresolved = CheckDynamicLinks(g.model, g.log, targetFolder)

	stats := walker.Stats()
	logger.WithFields(logrus.Fields{
		"created":    stats.Created,
		"updated":    stats.Updated,
		"cleared":    stats.Cleared,
		"excluded":   stats.Excluded,
		"unresolved": len(job.unresolved),
	}).Info("Finished generating nodes")
	return nil
}

func (g *Generator) acquire(folder uuid.UUID) bool {
	g.runningLock.Lock()
	defer g.runningLock.Unlock()

	if _, ok := g.running[folder]; ok {
		return false
	}
	g.running[folder] = struct{}{}
	return true
}

func (g *Generator) release(folder uuid.UUID) {
	g.runningLock.Lock()
	defer g.runningLock.Unlock()

	delete(g.running, folder)
}
