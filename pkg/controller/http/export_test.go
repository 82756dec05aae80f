package http

// Export for testing
var VerifySlackSignature = verifySlackSignature
