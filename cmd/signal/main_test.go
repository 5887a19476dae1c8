package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-signal/internal/journal"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/version"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MainTestSuite struct {
	suite.Suite
	out *bytes.Buffer
}

func TestMainSuite(t *testing.T) {
	suite.Run(t, new(MainTestSuite))
}

func (suite *MainTestSuite) SetupTest() {
	suite.out = &bytes.Buffer{}
}

func (suite *MainTestSuite) run(args ...string) error {
	cmd := newCommand()
	cmd.Writer = suite.out

	return cmd.Run(context.Background(), append([]string{"argo-signal"}, args...))
}

func (suite *MainTestSuite) writeConfig(content string) string {
	path := filepath.Join(suite.T().TempDir(), "signal.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (suite *MainTestSuite) TestVersion() {
	suite.Require().NoError(suite.run("version"))
	suite.Equal(version.GetVersion()+"\n", suite.out.String())
}

func (suite *MainTestSuite) TestSchema() {
	suite.Require().NoError(suite.run("schema"))
	suite.Contains(suite.out.String(), "poll_interval_seconds")
}

func (suite *MainTestSuite) TestProviders() {
	suite.Require().NoError(suite.run("providers", "--schema"))

	out := suite.out.String()
	suite.Contains(out, "binance")
	suite.Contains(out, "polygon")
	suite.Contains(out, "requires API key")
	suite.Contains(out, "apiKey")
}

func (suite *MainTestSuite) TestConfigRedactsSecrets() {
	path := suite.writeConfig(`
symbols: [BTCUSDT]
notifiers:
  telegram:
    bot_token: 123:secret
    chat_id: "42"
`)

	suite.Require().NoError(suite.run("config", "--config", path))
	suite.NotContains(suite.out.String(), "123:secret")
	suite.Contains(suite.out.String(), "BTCUSDT")
}

func (suite *MainTestSuite) TestMissingConfig() {
	err := suite.run("scan-once", "--config", filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.Error(err)
}

func (suite *MainTestSuite) TestNewApp() {
	path := suite.writeConfig("symbols: [BTCUSDT, ETHUSDT]\nmetrics_addr: \"127.0.0.1:0\"\n")

	cmd := newCommand()
	cmd.Writer = suite.out

	var built *app

	cmd.Commands = append(cmd.Commands, newInspectCommand(func(a *app) { built = a }))
	suite.Require().NoError(cmd.Run(context.Background(), []string{"argo-signal", "inspect", "--config", path}))

	suite.Require().NotNil(built)
	suite.NotNil(built.server)
	suite.NotNil(built.scanner)
	suite.Error(built.scanner.Health())
}

type unclosableJournal struct {
	journal.Journal
}

func (unclosableJournal) Close() error {
	return errors.New(errors.ErrCodeQueryFailed, "database is locked")
}

func (suite *MainTestSuite) TestCloseJournalLogsFailure() {
	core, logs := observer.New(zap.WarnLevel)

	a := &app{journal: unclosableJournal{}, log: &logger.Logger{Logger: zap.New(core)}}
	a.close()

	entries := logs.FilterMessage("Failed to close journal").All()
	suite.Require().Len(entries, 1)
	suite.Contains(entries[0].ContextMap()["error"], "database is locked")
}
