package http

// VerifySlackSignature is exported for testing
var VerifySlackSignature = verifySlackSignature

// StateCookieName is exported for testing
const StateCookieName = stateCookieName
