package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/healthtwin/riskengine/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording keys", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord(ctx, "key-1")

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(ctx, "key-1")
				seen := d.SeenAndRecord(ctx, "key-1")

				Convey("Then it should return true without growing", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key is unrecorded", func() {
				d.SeenAndRecord(ctx, "key-1")
				d.Unrecord(ctx, "key-1")

				Convey("Then a retry is accepted again", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord(ctx, "key-1"), ShouldBeFalse)
				})
			})

			Convey("And an unknown key is unrecorded", func() {
				d.SeenAndRecord(ctx, "key-1")
				d.Unrecord(ctx, "missing")

				Convey("Then nothing changes", func() {
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When the deduper is bounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for _, k := range []string{"a", "b", "c"} {
				So(d.SeenAndRecord(ctx, k), ShouldBeFalse)
			}

			Convey("And a fourth key arrives", func() {
				d.SeenAndRecord(ctx, "d")

				Convey("Then the oldest key is forgotten", func() {
					So(d.Size(), ShouldEqual, 3)
					So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
				})
			})

			Convey("And a middle key was unrecorded first", func() {
				d.Unrecord(ctx, "b")
				d.SeenAndRecord(ctx, "d")

				Convey("Then no eviction is needed", func() {
					So(d.Size(), ShouldEqual, 3)
					So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
				})
			})
		})

		Convey("When the max size is one", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1))
			d.SeenAndRecord(ctx, "key-1")
			d.SeenAndRecord(ctx, "key-2")

			Convey("Then only the latest key is remembered", func() {
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, "key-2"), ShouldBeTrue)
			})
		})

		Convey("When the max size is not positive", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

			Convey("Then it should be unbounded", func() {
				const n = 1000
				for i := 0; i < n; i++ {
					So(d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i)), ShouldBeFalse)
				}
				So(d.Size(), ShouldEqual, int64(n))
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const numGoroutines = 10
		const keysPerGoroutine = 100

		Convey("When every goroutine submits the same keys", func() {
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for g := 0; g < numGoroutines; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < keysPerGoroutine; j++ {
						if !d.SeenAndRecord(context.Background(), fmt.Sprintf("key-%d", j)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each key is accepted exactly once", func() {
				So(fresh, ShouldEqual, keysPerGoroutine)
				So(d.Size(), ShouldEqual, int64(keysPerGoroutine))
			})
		})

		Convey("When goroutines record then unrecord distinct keys", func() {
			var wg sync.WaitGroup
			for g := 0; g < numGoroutines; g++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					for j := 0; j < keysPerGoroutine; j++ {
						key := fmt.Sprintf("key-%d-%d", id, j)
						d.SeenAndRecord(context.Background(), key)
						d.Unrecord(context.Background(), key)
					}
				}(g)
			}
			wg.Wait()

			Convey("Then nothing is left behind", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})
}
