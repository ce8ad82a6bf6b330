package cli

// PrintTutorial is exported for testing
var PrintTutorial = printTutorial
