package calculator

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"dtv-fixtures/internal/models"
)

type ProgressCallback func(current, total int, msg string)
type LoggerCallback func(msg string)

// NoDistance marks a result whose customer had no usable coordinates.
const NoDistance = -1.0

// ComputeNearest pairs every customer with its nearest pickit point. Customers
// without coordinates get Distance == NoDistance and no point.
func ComputeNearest(ctx context.Context, customers []models.Customer, points []models.PickitPoint, onProgress ProgressCallback, logger LoggerCallback) ([]models.ResultRow, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no pickit points")
	}
	if logger == nil {
		logger = func(string) {}
	}

	total := len(customers)
	results := make([]models.ResultRow, total)
	if total == 0 {
		return results, nil
	}

	numCPU := runtime.NumCPU()
	if numCPU < 1 {
		numCPU = 1
	}
	chunkSize := (total + numCPU - 1) / numCPU

	var wg sync.WaitGroup
	var processedCount int64

	logger(fmt.Sprintf("Starting nearest-point search with %d CPUs, %d customers, %d points", numCPU, total, len(points)))

	for i := 0; i < numCPU; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if start >= total {
			break
		}
		if end > total {
			end = total
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()

			for idx := s; idx < e; idx++ {
				if ctx.Err() != nil {
					return
				}
				src := customers[idx]
				row := models.ResultRow{
					Row:      src.Row,
					ClientID: src.ClientID,
					Phone:    src.Phone,
					Lat:      src.Loc.Lat,
					Lon:      src.Loc.Lon,
					Distance: NoDistance,
				}
				if src.HasLoc {
					nearestIdx, minDist := Nearest(src.Loc, points)
					nearest := points[nearestIdx]
					row.PointName = nearest.Name
					row.PointLat = nearest.Loc.Lat
					row.PointLon = nearest.Loc.Lon
					row.Distance = minDist
				}
				results[idx] = row

				count := atomic.AddInt64(&processedCount, 1)
				if count%500 == 0 && onProgress != nil {
					onProgress(int(count), total, "")
				}
			}
		}(start, end)
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if onProgress != nil {
		onProgress(total, total, "")
	}

	logger("Nearest-point search completed.")
	return results, nil
}

// ClassifyRadius splits results into those within radiusMeters of their nearest
// point and the rest. Results without a distance always fall outside.
func ClassifyRadius(results []models.ResultRow, radiusMeters float64) (within, outside []models.ResultRow) {
	for _, r := range results {
		if r.Distance != NoDistance && r.Distance <= radiusMeters {
			within = append(within, r)
		} else {
			outside = append(outside, r)
		}
	}
	return within, outside
}
