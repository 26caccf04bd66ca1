package cmd

import (
	"flag"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors predict the values of the flags shared by several commands.
var flagPredictors = map[string]complete.Predictor{
	"kind":   predict.Set{"pie", "bar", "timeline"},
	"split":  predict.Set{"coin", "wallet", "type"},
	"days":   predict.Set{"7", "30", "90", "365", "max"},
	"o":      predict.Files("*"),
	"config": predict.Files("*.yaml"),
	"db":     predict.Files("*.db"),
}

func init() {
	var types predict.Set
	for _, t := range cryptofolio.CoinTypes {
		types = append(types, t.String())
	}
	flagPredictors["type"] = types
}

// argPredictors predict the positional arguments of a command.
var argPredictors = map[string]complete.Predictor{
	"import": predict.Files("*.jsonl"),
	"db":     predict.Set{"info", "schema", "vacuum"},
	"topic":  predict.Set(topics()),
}

func topics() []string {
	all, err := docs.GetAllTopics()
	if err != nil {
		return nil
	}
	return append(all, "*")
}

// Completion returns the shell completion of the commands, with their flags.
func Completion(global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagsOf(global),
	}
	for _, c := range Commands {
		f := flag.NewFlagSet(c.Cmd.Name(), flag.ContinueOnError)
		c.Cmd.SetFlags(f)
		sub := &complete.Command{Flags: flagsOf(f), Args: predict.Nothing}
		if p, ok := argPredictors[c.Cmd.Name()]; ok {
			sub.Args = p
		}
		root.Sub[c.Cmd.Name()] = sub
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	return root
}

func flagsOf(f *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	f.VisitAll(func(fl *flag.Flag) {
		switch p, ok := flagPredictors[fl.Name]; {
		case ok:
			flags[fl.Name] = p
		case isBool(fl):
			flags[fl.Name] = predict.Nothing
		default:
			flags[fl.Name] = predict.Something
		}
	})
	return flags
}

func isBool(fl *flag.Flag) bool {
	b, ok := fl.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
