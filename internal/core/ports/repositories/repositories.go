package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	EventRepo      EventRepositoryFacade
	GraphRepo      GraphRepositoryFacade
	InvoiceRepo    InvoiceRepositoryFacade
	MatchRepo      MatchRepositoryFacade
	ExceptionRepo  ExceptionRepositoryFacade
	CorrectionRepo CorrectionRepositoryFacade
	LedgerRepo     LedgerRepositoryFacade
	ResolutionRepo ResolutionWriter
	RunRepo        RunRepositoryFacade
}
