package analyze

// WithTranscriberClient exposes the private client option so tests can
// inject a fake without real credentials.
var WithTranscriberClient = withTranscriberClient
