package services

// ServiceContainer holds all service interfaces needed by the HTTP layer.
type ServiceContainer struct {
	Normalizer NormalizerSvcFacade
	Graph      GraphSvcFacade
	Matcher    MatcherSvcFacade
	Recon      ReconSvcFacade
}
