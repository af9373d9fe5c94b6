package forms

import (
	"sort"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
)

// definitions lists every state with a dedicated certificate. A new state is
// one constructor file plus one entry here.
var definitions = []types.Definition{
	alabamaA4(),
	arkansasAR4EC(),
	arizonaA4(),
	californiaDE4(),
	connecticutCTW4(),
	districtOfColumbiaD4(),
	delawareW4(),
	georgiaG4(),
	hawaiiHW4(),
	iowaW4(),
	idahoW4(),
	illinoisW4(),
	indianaWH4(),
	kansasK4(),
	kentuckyK4(),
	louisianaL4(),
	massachusettsM4(),
	marylandMW507(),
	maineW4ME(),
	michiganW4(),
	minnesotaW4MN(),
	missouriW4(),
	mississippi89350(),
	montanaMW4(),
	northCarolinaNC4(),
	nebraskaW4N(),
	newJerseyW4(),
	newYorkIT2104(),
	ohioIT4(),
	oklahomaW4(),
	oregonW4(),
	pennsylvaniaREV419(),
	rhodeIslandW4(),
	southCarolinaW4(),
	virginiaVA4(),
	vermontW4VT(),
	wisconsinWT4(),
	westVirginiaIT104(),
}

var definitionByState = func() map[types.StateCode]types.Definition {
	out := make(map[types.StateCode]types.Definition, len(definitions))
	for _, def := range definitions {
		if _, dup := out[def.StateCode]; dup {
			panic("forms: duplicate definition for " + string(def.StateCode))
		}
		out[def.StateCode] = def
	}
	return out
}()

// Lookup returns a copy of the certificate registered for state.
func Lookup(state string) (types.Definition, bool) {
	def, ok := definitionByState[types.NormalizeStateCode(state)]
	if !ok {
		return types.Definition{}, false
	}
	return def.Clone(), true
}

// States lists the registered state codes in order.
func States() []types.StateCode {
	out := make([]types.StateCode, 0, len(definitionByState))
	for state := range definitionByState {
		out = append(out, state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FormIDs maps each registered state to its form id.
func FormIDs() map[string]string {
	out := make(map[string]string, len(definitionByState))
	for state, def := range definitionByState {
		out[string(state)] = def.FormID
	}
	return out
}
