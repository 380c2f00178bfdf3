package experiments

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"treeval/codec"
	"treeval/config"
	"treeval/metrics"
	"treeval/offload"
	"treeval/simulator"
	"treeval/transport"
	"treeval/tree"
)

// Record is the outcome of one tree of a timing run.
type Record struct {
	Size     int
	Repeat   int
	Build    time.Duration // Random tree generation
	Evaluate time.Duration // Software Solve
	Offload  time.Duration // Serialize, send and read back the result
	Words    int
	Value    float64
	Action   int
	Result   codec.Result
	Match    bool // Result agrees with the software value and action
}

// Run times software evaluation against an offload to the accelerator model
// for every configured tree size.
func Run(ctx context.Context, cfg config.Config, collector metrics.Collector) ([]Record, error) {
	if collector == nil {
		collector = metrics.NewDummyCollector()
	}
	rng := rand.New(rand.NewSource(cfg.Bench.Seed))

	link := transport.NewLink()
	defer link.Close()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go simulator.NewDevice(simulator.WithWeightScale(cfg.Offload.WeightScale)).Serve(ctx, link.Device())

	serializerOptions, sessionOptions := offload.FromConfig(cfg.Offload)
	serializer := offload.NewSerializer(serializerOptions...)
	session := offload.NewSession(
		transport.Instrument(link, collector),
		append(sessionOptions, offload.WithSerializer(serializer), offload.WithCollector(collector))...,
	)

	records := []Record{}
	log.Info().Msgf("starting timing run over sizes %v with %d repeats...", cfg.Bench.Sizes, cfg.Bench.Repeats)

	for _, size := range cfg.Bench.Sizes {
		for i := 0; i < cfg.Bench.Repeats; i++ {
			record, err := runOne(ctx, rng, size, serializer, session, collector)
			if err != nil {
				return records, fmt.Errorf("size %d repeat %d: %w", size, i+1, err)
			}
			record.Repeat = i + 1
			if !record.Match {
				log.Warn().Msgf("size %d repeat %d: accelerator returned %+v, software %v/%d", size, i+1, record.Result, record.Value, record.Action)
			}
			records = append(records, record)
		}
		log.Info().Msgf("completed size %d", size)
	}

	log.Info().Msgf("completed timing run with %d trees", len(records))
	return records, nil
}

func runOne(ctx context.Context, rng *rand.Rand, size int, serializer *offload.Serializer, session *offload.Session, collector metrics.Collector) (Record, error) {
	start := time.Now()
	t, err := tree.Random(rng, size)
	if err != nil {
		return Record{}, err
	}
	build := time.Since(start)

	start = time.Now()
	solved := t.Solve()
	evaluate := time.Since(start)
	collector.Evaluated(evaluate)

	words, err := serializer.Serialize(t)
	if err != nil {
		return Record{}, err
	}

	start = time.Now()
	result, err := session.Offload(ctx, t)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Size:     size,
		Build:    build,
		Evaluate: evaluate,
		Offload:  time.Since(start),
		Words:    len(words),
		Value:    solved.Value,
		Action:   solved.Action,
		Result:   result,
		Match:    matches(solved, result),
	}, nil
}

// matches compares a software result with a result word, which carries only
// the low bits of the reward and reports NoAction as action 0.
func matches(solved tree.Result, result codec.Result) bool {
	action := solved.Action
	if action == tree.NoAction {
		action = 0
	}
	want := codec.EncodeResult(uint8(action), uint64(max(solved.Value, 0)))
	return codec.DecodeResult(want) == result
}
