package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-signal/pkg/marketdata/provider DataProvider
//go:generate mockgen -destination=./mock_notifier.go -package=mocks github.com/rxtech-lab/argo-signal/internal/notification Notifier
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/argo-signal/internal/indicator Indicator
//go:generate mockgen -destination=./mock_clock.go -package=mocks github.com/rxtech-lab/argo-signal/internal/cooldown Clock
//go:generate mockgen -destination=./mock_snapshot_builder.go -package=mocks github.com/rxtech-lab/argo-signal/internal/scanner/engine SnapshotBuilder
