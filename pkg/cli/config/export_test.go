package config

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{
		botToken:  botToken,
		channelID: channelID,
	}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(firebaseProjectID, noAuthEmail string) *Auth {
	return &Auth{
		firebaseProjectID: firebaseProjectID,
		noAuthEmail:       noAuthEmail,
		noAuthName:        "Developer",
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewAIForTest creates an AI config for testing purposes
func NewAIForTest(catalogPath string) *AI {
	return &AI{catalogPath: catalogPath}
}

// NewCryptoForTest creates a Crypto config for testing purposes
func NewCryptoForTest(key string) *Crypto {
	return &Crypto{key: key}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(bucket, pdfFont string) *Storage {
	return &Storage{bucket: bucket, prefix: "reports", pdfFont: pdfFont}
}

var Redactor = redactor
