package classify

import (
	"sync"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/forms"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
)

var defaultClassifier = sync.OnceValue(func() Classifier {
	return New(forms.FormIDs(), FederalEquivalentStates, NoTaxStates)
})

// Default returns the classifier backed by the form registry.
func Default() Classifier { return defaultClassifier() }

func Classify(raw string) types.Disposition {
	return defaultClassifier().Classify(raw)
}
