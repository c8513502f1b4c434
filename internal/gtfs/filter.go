package gtfs

import "sort"

// Filter reduces a full GTFS dataset to the given routes: their trips,
// the stop_times of those trips, the stops those trips actually serve,
// and the calendars and exceptions of their services. The returned map
// records which of the target routes serve each surviving stop.
func Filter(data *Data, routeIDs []string) (*Data, map[string][]string) {
	targetRoutes := make(map[string]bool, len(routeIDs))
	for _, id := range routeIDs {
		targetRoutes[id] = true
	}

	filtered := &Data{}

	tripRoute := make(map[string]string)
	serviceIDs := make(map[string]bool)
	for _, trip := range data.Trips {
		if !targetRoutes[trip.RouteID] {
			continue
		}
		filtered.Trips = append(filtered.Trips, trip)
		tripRoute[trip.TripID] = trip.RouteID
		serviceIDs[trip.ServiceID] = true
	}

	stopRoutes := make(map[string]map[string]bool)
	for _, st := range data.StopTimes {
		routeID, ok := tripRoute[st.TripID]
		if !ok {
			continue
		}
		filtered.StopTimes = append(filtered.StopTimes, st)

		if stopRoutes[st.StopID] == nil {
			stopRoutes[st.StopID] = make(map[string]bool)
		}
		stopRoutes[st.StopID][routeID] = true
	}

	for _, stop := range data.Stops {
		if stopRoutes[stop.StopID] != nil {
			filtered.Stops = append(filtered.Stops, stop)
		}
	}

	for _, c := range data.Calendars {
		if serviceIDs[c.ServiceID] {
			filtered.Calendars = append(filtered.Calendars, c)
		}
	}
	for _, cd := range data.CalendarDates {
		if serviceIDs[cd.ServiceID] {
			filtered.CalendarDates = append(filtered.CalendarDates, cd)
		}
	}

	routesByStop := make(map[string][]string, len(stopRoutes))
	for stopID, routes := range stopRoutes {
		for routeID := range routes {
			routesByStop[stopID] = append(routesByStop[stopID], routeID)
		}
		sort.Strings(routesByStop[stopID])
	}

	return filtered, routesByStop
}
